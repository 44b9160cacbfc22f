package window

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the calendar-date format used for every DateKey.
const Layout = "2006-01-02"

// MaxDays is the largest window Generate accepts, about ten years of
// daily fetches.
const MaxDays = 3660

// ErrInvalidArgument is returned when a window size is negative or above MaxDays.
var ErrInvalidArgument = errors.New("invalid argument")

// DateKey identifies one calendar day as YYYY-MM-DD.
type DateKey string

// String implements fmt.Stringer
func (k DateKey) String() string {
	return string(k)
}

// Key formats t as a DateKey in t's own location.
func Key(t time.Time) DateKey {
	return DateKey(t.Format(Layout))
}

// Generate returns the trailing window of days+1 calendar dates ending on
// now's date, oldest first. Days are stepped with AddDate so month, year
// and DST transitions land on the correct calendar day.
func Generate(days int, now time.Time) ([]DateKey, error) {
	if days < 0 {
		return nil, fmt.Errorf("%w: window size must be >= 0, got %d", ErrInvalidArgument, days)
	}
	if days > MaxDays {
		return nil, fmt.Errorf("%w: window size must be <= %d, got %d", ErrInvalidArgument, MaxDays, days)
	}

	// Anchor at noon so a 23h or 25h day never shifts the date.
	today := time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location())

	dates := make([]DateKey, 0, days+1)
	for i := days; i >= 0; i-- {
		dates = append(dates, Key(today.AddDate(0, 0, -i)))
	}
	return dates, nil
}

// SameDay reports whether a and b fall on the same calendar day in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
