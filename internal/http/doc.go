// Package http exposes the room booking services as a JSON API.
//
// Routes (see router.go):
//   - POST /register, POST /login: create the session. Response:
//     {"token","expires_at","user":{...}}; the token is also set as the
//     `session_token` cookie.
//   - POST /logout, GET /session: current session.
//   - GET /rooms, GET /rooms/{roomID}, GET /rooms/{roomID}/availability?date=:
//     room catalog and the free slots of a day.
//   - GET /bookings, POST /bookings, POST /bookings/{bookingID}/cancel,
//     DELETE /bookings/{bookingID}, GET /bookings/calendar.ics: the caller's
//     bookings.
//
// Every route except register and login requires a token, passed as
// `Authorization: Bearer <token>` or the `session_token` cookie. Errors are
// returned as {"error_code","message","errors"}.
package http
