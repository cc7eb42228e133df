package models

import "strings"

// Status is the availability classification of an employee.
type Status string

const (
	StatusAvailable          Status = "Available"
	StatusPartiallyAvailable Status = "Partially Available"
	StatusOccupied           Status = "Occupied"
	StatusUnknown            Status = ""
)

// StatusUnavailable is the label the details form writes for an occupied employee.
const StatusUnavailable = "Unavailable"

// ParseStatus maps a free-text availability label onto one of the three states.
// Matching is case-insensitive; "partial" anywhere in the label means partially available.
func ParseStatus(label string) Status {
	key := strings.ToLower(strings.TrimSpace(label))
	switch {
	case key == "available":
		return StatusAvailable
	case key == "partially available" || strings.Contains(key, "partial"):
		return StatusPartiallyAvailable
	case key == "occupied" || key == "unavailable":
		return StatusOccupied
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	if s == StatusUnknown {
		return "Unknown"
	}
	return string(s)
}
