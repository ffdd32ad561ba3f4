package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// Amenities are stored as a JSON array of strings. NULL or blank columns
// decode to an empty list; anything else that is not such an array is a
// malformed record.

func encodeAmenities(amenities []string) (string, error) {
	if len(amenities) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(amenities)
	if err != nil {
		return "", fmt.Errorf("encode amenities: %w", err)
	}
	return string(raw), nil
}

func decodeAmenities(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	var amenities []string
	if err := json.Unmarshal([]byte(raw), &amenities); err != nil {
		return nil, fmt.Errorf("%w: amenities %q: %v", persistence.ErrMalformedRecord, raw, err)
	}
	if amenities == nil {
		amenities = []string{}
	}
	return amenities, nil
}
