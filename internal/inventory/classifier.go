package inventory

import (
	"time"

	"github.com/refriproject/refri-backend/pkg/enums"
)

// DefaultHorizonDays is the window ahead of today within which an item counts
// as expiring.
const DefaultHorizonDays = 7

// DayUTC truncates a timestamp to its calendar day at UTC midnight. All
// expiry comparisons happen at this granularity so classification does not
// flap near midnight across timezones.
func DayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BeforeToday reports whether date falls on a calendar day strictly before
// today (both compared at UTC midnight).
func BeforeToday(date, today time.Time) bool {
	return DayUTC(date).Before(DayUTC(today))
}

// WithinHorizon reports whether date falls between today and today plus
// horizonDays, inclusive at both ends.
func WithinHorizon(date, today time.Time, horizonDays int) bool {
	day := DayUTC(date)
	start := DayUTC(today)
	end := start.AddDate(0, 0, horizonDays)
	return !day.Before(start) && !day.After(end)
}

// Classify maps an expiration date to one of fresh, expiring, or expired for
// the given day. A nil date never expires. This is the single classification
// rule; every load and mutation path routes through it.
func Classify(expirationDate *time.Time, today time.Time, horizonDays int) enums.FoodStatus {
	if expirationDate == nil {
		return enums.FoodStatusFresh
	}
	if BeforeToday(*expirationDate, today) {
		return enums.FoodStatusExpired
	}
	if WithinHorizon(*expirationDate, today, horizonDays) {
		return enums.FoodStatusExpiring
	}
	return enums.FoodStatusFresh
}
