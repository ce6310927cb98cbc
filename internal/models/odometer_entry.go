package models

import (
	"time"

	"github.com/google/uuid"
)

// OdometerEntry is a single dated odometer reading in kilometres.
// Entries are immutable once recorded; corrections are delete-and-re-add.
type OdometerEntry struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Value int       `json:"value"`
}

func NewOdometerEntry(date time.Time, value int) OdometerEntry {
	return OdometerEntry{
		ID:    uuid.New(),
		Date:  date,
		Value: value,
	}
}
