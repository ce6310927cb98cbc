package reminders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reminder categories. The category is the first segment of both reminder
// identifiers and cause tokens, which is what makes prefix cancellation and
// per-category metrics possible.
const (
	CategoryRUCExpiry    = "ruc-expiry"
	CategoryWOFExpiry    = "wof-expiry"
	CategoryRegoExpiry   = "rego-expiry"
	CategoryReadingStale = "reading-stale"
)

var Categories = []string{
	CategoryRUCExpiry,
	CategoryWOFExpiry,
	CategoryRegoExpiry,
	CategoryReadingStale,
}

// ReminderID identifies the single live reminder slot per category per
// vehicle. Scheduling the same id again replaces the previous reminder.
func ReminderID(category string, vehicleID uuid.UUID) string {
	return category + ":" + vehicleID.String()
}

// CategoryOf extracts the category segment from a reminder id or cause token.
func CategoryOf(id string) string {
	for i := 0; i < len(id); i++ {
		if id[i] == ':' {
			return id[:i]
		}
	}
	return id
}

// RUCExpiryToken names the cause of a RUC reminder. It embeds the block
// threshold, so extending the block produces a fresh token and re-arms the
// reminder, while recomputing the same projection does not.
func RUCExpiryToken(vehicleID uuid.UUID, distanceExpiry int) string {
	return fmt.Sprintf("%s:%s:%d", CategoryRUCExpiry, vehicleID, distanceExpiry)
}

// DateExpiryToken names the cause of a WOF or registration reminder. The date
// is day-granular: editing the expiry to a different day re-arms, retouching
// the same day does not. A nil date yields a "none" token so that clearing
// and re-setting the same date is still one cause.
func DateExpiryToken(category string, vehicleID uuid.UUID, expiry *time.Time) string {
	day := "none"
	if expiry != nil {
		day = expiry.Format("2006-01-02")
	}
	return fmt.Sprintf("%s:%s:%s", category, vehicleID, day)
}

// ReadingStaleToken names the cause of a stale-reading reminder. It embeds
// the latest entry id and the applicable interval: logging a new reading or
// crossing the history-size threshold both re-arm.
func ReadingStaleToken(vehicleID uuid.UUID, latestEntryID string, intervalDays int) string {
	return fmt.Sprintf("%s:%s:%s:%d", CategoryReadingStale, vehicleID, latestEntryID, intervalDays)
}
