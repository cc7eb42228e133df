package models

import "time"

// JournalEntry describes one confirmed save.
type JournalEntry struct {
	EmpID       string
	Facet       Facet
	RequestID   string
	Method      string
	Attempts    int
	ConfirmedAt time.Time
}
