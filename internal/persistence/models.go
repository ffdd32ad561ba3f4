package persistence

// User represents a registered account. Password holds the credential in the
// form produced by the configured password scheme.
type User struct {
	ID         string
	Email      string
	Name       string
	Password   string
	Department string
}

// Room represents a bookable meeting room.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Floor     string
	Amenities []string
}

// Booking status values.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a reservation of a room for a wall-clock interval on a date.
// Date is YYYY-MM-DD; StartTime and EndTime are zero-padded HH:MM values.
type Booking struct {
	ID          string
	UserID      string
	RoomID      string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
	Status      string
	// RoomName and RoomFloor are populated by queries joining the rooms table.
	RoomName  string
	RoomFloor string
}
