package models

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// TrendWindowDays is the trailing window used to compute the recent
	// consumption rate. Falls back to the full history when the window
	// holds fewer than two readings.
	TrendWindowDays = 30

	// DueSoonDays marks a WOF/registration expiry as due soon.
	DueSoonDays = 42

	// DueWithinTwoMonthsDays is the wider display threshold for the fleet list.
	DueWithinTwoMonthsDays = 60
)

// Vehicle is a tracked vehicle with its RUC block, compliance dates and
// odometer history. Entries are kept sorted by date ascending; DistanceExpiry
// only ever increases via explicit extend actions (caller-enforced).
type Vehicle struct {
	ID                 uuid.UUID       `json:"id"`
	Plate              string          `json:"plate"`
	DistanceExpiry     int             `json:"expiryOdometer"`
	Entries            []OdometerEntry `json:"entries"`
	PhotoRef           string          `json:"imageName,omitempty"`
	WOFExpiry          *time.Time      `json:"wofExpiryDate,omitempty"`
	RegistrationExpiry *time.Time      `json:"registrationExpiryDate,omitempty"`
}

func NewVehicle(plate string, distanceExpiry int, entries []OdometerEntry) *Vehicle {
	v := &Vehicle{
		ID:             uuid.New(),
		Plate:          strings.ToUpper(plate),
		DistanceExpiry: distanceExpiry,
		Entries:        entries,
	}
	v.SortEntries()
	return v
}

// SortEntries restores the date-ascending entry order. Stable, so equal
// dates keep their insertion order.
func (v *Vehicle) SortEntries() {
	sort.SliceStable(v.Entries, func(i, j int) bool {
		return v.Entries[i].Date.Before(v.Entries[j].Date)
	})
}

// LatestEntry returns the entry with the maximal date, ties broken by
// maximal value.
func (v *Vehicle) LatestEntry() (OdometerEntry, bool) {
	if len(v.Entries) == 0 {
		return OdometerEntry{}, false
	}
	latest := v.Entries[0]
	for _, e := range v.Entries[1:] {
		if e.Date.After(latest.Date) || (e.Date.Equal(latest.Date) && e.Value > latest.Value) {
			latest = e
		}
	}
	return latest, true
}

func (v *Vehicle) LatestOdometer() int {
	latest, ok := v.LatestEntry()
	if !ok {
		return 0
	}
	return latest.Value
}

// DistanceRemaining is the unused part of the RUC block, never negative.
func (v *Vehicle) DistanceRemaining() int {
	return max(v.DistanceExpiry-v.LatestOdometer(), 0)
}

// ConsumptionRate is the average km/day over the trailing 30-day window,
// or over the full history when the window holds fewer than two readings.
// Non-increasing readings yield 0: no usable trend, never a negative rate.
func (v *Vehicle) ConsumptionRate(now time.Time) float64 {
	if len(v.Entries) < 2 {
		return 0
	}

	sorted := make([]OdometerEntry, len(v.Entries))
	copy(sorted, v.Entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	cutoff := now.AddDate(0, 0, -TrendWindowDays)
	recent := make([]OdometerEntry, 0, len(sorted))
	for _, e := range sorted {
		if !e.Date.Before(cutoff) {
			recent = append(recent, e)
		}
	}

	use := sorted
	if len(recent) >= 2 {
		use = recent
	}

	first, last := use[0], use[len(use)-1]
	if last.Value <= first.Value {
		return 0
	}

	// Floor of one day guards same-day multi-readings against division blow-up.
	days := max(DaysBetween(first.Date, last.Date), 1)
	return float64(last.Value-first.Value) / float64(days)
}

// ProjectedDaysRemaining estimates days until the RUC block is exhausted.
// Undefined (ok=false) when no usable consumption trend exists.
func (v *Vehicle) ProjectedDaysRemaining(now time.Time) (float64, bool) {
	rate := v.ConsumptionRate(now)
	if rate <= 0 {
		return 0, false
	}
	return float64(v.DistanceRemaining()) / rate, true
}

// ProjectedExhaustionDate is now plus the projected days, rounded up to
// whole days.
func (v *Vehicle) ProjectedExhaustionDate(now time.Time) (time.Time, bool) {
	days, ok := v.ProjectedDaysRemaining(now)
	if !ok {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, int(math.Ceil(days))), true
}

// WOFDaysRemaining is the calendar-day distance from now to the WOF expiry;
// negative when overdue, undefined when no date is set.
func (v *Vehicle) WOFDaysRemaining(now time.Time) (int, bool) {
	if v.WOFExpiry == nil {
		return 0, false
	}
	return DaysBetween(now, *v.WOFExpiry), true
}

func (v *Vehicle) RegistrationDaysRemaining(now time.Time) (int, bool) {
	if v.RegistrationExpiry == nil {
		return 0, false
	}
	return DaysBetween(now, *v.RegistrationExpiry), true
}

func (v *Vehicle) WOFDueSoon(now time.Time) bool {
	days, ok := v.WOFDaysRemaining(now)
	return ok && days <= DueSoonDays
}

func (v *Vehicle) RegistrationDueSoon(now time.Time) bool {
	days, ok := v.RegistrationDaysRemaining(now)
	return ok && days <= DueSoonDays
}

func (v *Vehicle) WOFDueWithinTwoMonths(now time.Time) bool {
	days, ok := v.WOFDaysRemaining(now)
	return ok && days <= DueWithinTwoMonthsDays
}

func (v *Vehicle) RegistrationDueWithinTwoMonths(now time.Time) bool {
	days, ok := v.RegistrationDaysRemaining(now)
	return ok && days <= DueWithinTwoMonthsDays
}

// Clone returns a deep copy safe to hand across goroutine boundaries.
func (v *Vehicle) Clone() *Vehicle {
	cp := *v
	cp.Entries = make([]OdometerEntry, len(v.Entries))
	copy(cp.Entries, v.Entries)
	if v.WOFExpiry != nil {
		t := *v.WOFExpiry
		cp.WOFExpiry = &t
	}
	if v.RegistrationExpiry != nil {
		t := *v.RegistrationExpiry
		cp.RegistrationExpiry = &t
	}
	return &cp
}

// DaysBetween is the difference in local start-of-day boundaries, not a raw
// interval division, so time-of-day components cannot shift the result.
func DaysBetween(start, end time.Time) int {
	s := startOfDay(start)
	e := startOfDay(end)
	// Rounding absorbs DST transitions (23h/25h days).
	return int(math.Round(e.Sub(s).Hours() / 24))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SortFleet orders vehicles by urgency: exhausted blocks first, then
// ascending projected days remaining (no projection sorts last), then
// ascending distance remaining, then plate. Stable.
func SortFleet(vehicles []*Vehicle, now time.Time) {
	sort.SliceStable(vehicles, func(i, j int) bool {
		a, b := vehicles[i], vehicles[j]

		aExhausted := a.DistanceRemaining() == 0
		bExhausted := b.DistanceRemaining() == 0
		if aExhausted != bExhausted {
			return aExhausted
		}

		aDays := math.Inf(1)
		if d, ok := a.ProjectedDaysRemaining(now); ok {
			aDays = d
		}
		bDays := math.Inf(1)
		if d, ok := b.ProjectedDaysRemaining(now); ok {
			bDays = d
		}
		if aDays != bDays {
			return aDays < bDays
		}

		if a.DistanceRemaining() != b.DistanceRemaining() {
			return a.DistanceRemaining() < b.DistanceRemaining()
		}
		return a.Plate < b.Plate
	})
}
