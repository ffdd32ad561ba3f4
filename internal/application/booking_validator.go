package application

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/example/room-booking/internal/scheduler"
)

// Validation codes reported in ValidationError.Code for booking input.
const (
	CodeMissingFields      = "missing_fields"
	CodeInvalidDate        = "invalid_date"
	CodePastDate           = "past_date"
	CodeTooFarInAdvance    = "too_far_in_advance"
	CodeDescriptionTooLong = "description_too_long"
	CodeTitleTooLong       = "title_too_long"
	CodeInvalidStartTime   = "invalid_start_time"
	CodeInvalidEndTime     = "invalid_end_time"
	CodeStartTimePassed    = "start_time_passed"
	CodeEndTimePassed      = "end_time_passed"
	CodeEndBeforeStart     = "end_before_start"
)

const (
	// DefaultMaxAdvanceDays bounds how far ahead a booking may be made.
	DefaultMaxAdvanceDays = 180
	// MaxTitleLength is the longest accepted booking title in characters.
	MaxTitleLength = 30
	// MaxDescriptionLength is the exclusive upper bound on description length.
	MaxDescriptionLength = 100

	dateLayout = "2006-01-02"
)

// ValidateBooking checks input against the booking rules in order and stops
// at the first failure. On success it returns the input with trimmed text and
// zero-padded times. now supplies both "today" and the current wall-clock
// minute, in its own location.
func ValidateBooking(input BookingInput, now time.Time, maxAdvanceDays int) (BookingInput, error) {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = DefaultMaxAdvanceDays
	}

	input.RoomID = strings.TrimSpace(input.RoomID)
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Date = strings.TrimSpace(input.Date)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)

	if input.RoomID == "" || input.Date == "" || input.StartTime == "" || input.EndTime == "" || input.Title == "" {
		return BookingInput{}, ruleViolation(CodeMissingFields, "booking", "Please fill in all required fields")
	}

	day, err := time.ParseInLocation(dateLayout, input.Date, now.Location())
	if err != nil {
		return BookingInput{}, ruleViolation(CodeInvalidDate, "date", "Please enter a valid date (YYYY-MM-DD)")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return BookingInput{}, ruleViolation(CodePastDate, "date", "Cannot book rooms for past dates. Please select today or a future date.")
	}
	if day.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return BookingInput{}, ruleViolation(CodeTooFarInAdvance, "date", "Cannot book rooms more than 6 months in advance.")
	}

	if utf8.RuneCountInString(input.Description) >= MaxDescriptionLength {
		return BookingInput{}, ruleViolation(CodeDescriptionTooLong, "description", "Description should be less than 100 characters")
	}
	if utf8.RuneCountInString(input.Title) > MaxTitleLength {
		return BookingInput{}, ruleViolation(CodeTitleTooLong, "title", "Title should be at most 30 characters")
	}

	if !scheduler.IsValidTime(input.StartTime) {
		return BookingInput{}, ruleViolation(CodeInvalidStartTime, "start_time", "Please enter valid start time (09:00 to 20:00)")
	}
	if !scheduler.IsValidTime(input.EndTime) {
		return BookingInput{}, ruleViolation(CodeInvalidEndTime, "end_time", "Please enter valid end time (09:00 to 20:00)")
	}

	input.StartTime = scheduler.NormalizeTime(input.StartTime)
	input.EndTime = scheduler.NormalizeTime(input.EndTime)
	start, _ := scheduler.ParseClock(input.StartTime)
	end, _ := scheduler.ParseClock(input.EndTime)

	if day.Equal(today) {
		current := scheduler.MinuteOfDay(now)
		if start <= current {
			return BookingInput{}, ruleViolation(CodeStartTimePassed, "start_time", "Cannot book a time that has already passed today")
		}
		if end <= current {
			return BookingInput{}, ruleViolation(CodeEndTimePassed, "end_time", "End time cannot be in the past")
		}
	}

	if end <= start {
		return BookingInput{}, ruleViolation(CodeEndBeforeStart, "end_time", "End time must be after start time")
	}

	return input, nil
}
