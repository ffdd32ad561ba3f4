// Package calendar renders bookings as an iCalendar feed.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
)

// DefaultProductID identifies the generator in the PRODID property.
const DefaultProductID = "-//room-booking//bookings//EN"

// ErrNoEvents is returned by Encode for an empty event list; a VCALENDAR
// must hold at least one component.
var ErrNoEvents = errors.New("calendar: no events")

// Event is one confirmed booking to publish.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Options controls feed-level properties.
type Options struct {
	ProductID string
	// Stamp is written as DTSTAMP on every event. Zero means time.Now.
	Stamp time.Time
}

// Encode writes a VCALENDAR with one VEVENT per event. Times are written in
// UTC.
func Encode(w io.Writer, events []Event, opts Options) error {
	if len(events) == 0 {
		return ErrNoEvents
	}
	if opts.ProductID == "" {
		opts.ProductID = DefaultProductID
	}
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, opts.ProductID)

	for _, e := range events {
		if e.UID == "" {
			return errors.New("calendar: event without uid")
		}
		if !e.End.After(e.Start) {
			return fmt.Errorf("calendar: event %s ends before it starts", e.UID)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, e.UID)
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetDateTime(ical.PropDateTimeStart, e.Start.UTC())
		event.Props.SetDateTime(ical.PropDateTimeEnd, e.End.UTC())
		event.Props.SetText(ical.PropSummary, e.Summary)
		if e.Description != "" {
			event.Props.SetText(ical.PropDescription, e.Description)
		}
		if e.Location != "" {
			event.Props.SetText(ical.PropLocation, e.Location)
		}
		event.Props.SetText(ical.PropStatus, "CONFIRMED")

		cal.Children = append(cal.Children, event.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("calendar: encode: %w", err)
	}
	return nil
}
