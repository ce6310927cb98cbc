package reminders

import (
	"rucd/internal/models"
	"rucd/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func attentionVehicle(plate string, expiry int, entries []models.OdometerEntry) *models.Vehicle {
	return models.NewVehicle(plate, expiry, entries)
}

func TestAttentionCount(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)
	at := func(offset, value int) models.OdometerEntry {
		return models.NewOdometerEntry(now.AddDate(0, 0, offset), value)
	}

	// Exhausted block.
	exhausted := attentionVehicle("AAA111", 1000, []models.OdometerEntry{at(0, 1500)})

	// 100 km/day, 1000 km left: projected 10 days, inside the lead window.
	urgent := attentionVehicle("BBB111", 3000, []models.OdometerEntry{
		at(-10, 1000),
		at(0, 2000),
	})

	// Same rate, 48000 km left: far out.
	healthy := attentionVehicle("CCC111", 50000, []models.OdometerEntry{
		at(-10, 1000),
		at(0, 2000),
	})

	// Healthy block but WOF inside the date window.
	wofDue := attentionVehicle("DDD111", 50000, []models.OdometerEntry{
		at(-10, 1000),
		at(0, 2000),
	})
	wof := now.AddDate(0, 0, 30)
	wofDue.WOFExpiry = &wof

	// Exhausted AND WOF due: still one vehicle.
	both := attentionVehicle("EEE111", 1000, []models.OdometerEntry{at(0, 1500)})
	both.WOFExpiry = &wof

	fleet := []*models.Vehicle{exhausted, urgent, healthy, wofDue, both}
	assert.Equal(t, 4, AttentionCount(fleet, now, 14, 42))
}

func TestAttentionCount_EmptyFleet(t *testing.T) {
	assert.Equal(t, 0, AttentionCount(nil, time.Now(), 14, 42))
}

func TestAttentionCount_NoProjectionNotCounted(t *testing.T) {
	now := time.Now()
	// One reading only: no trend, block not exhausted, no dates.
	v := attentionVehicle("AAA111", 5000, []models.OdometerEntry{
		models.NewOdometerEntry(now, 1000),
	})

	assert.Equal(t, 0, AttentionCount([]*models.Vehicle{v}, now, 14, 42))
}

func TestLogBadgeSink_SetCount(t *testing.T) {
	metrics := testutil.NewMockMetrics()
	sink := NewLogBadgeSink(&testutil.MockLogger{}, metrics)

	sink.SetCount(3)
	sink.SetCount(0)
	sink.ClearDelivered()

	assert.Equal(t, []int{3, 0}, metrics.AttentionCounts)
}
