package fetcher

import (
	"math"

	"fxtrend/internal/window"
)

// Result is the outcome of fetching one currency's rate for one date.
// Exactly one of Value or Error is meaningful: a failed date carries NaN.
type Result struct {
	Date  window.DateKey
	Value float64
	Error error
}

// Succeeded builds a Result for a date that was fetched. A currency missing
// from the day's table is not a failure, its value is NaN.
func Succeeded(date window.DateKey, rates *Rates, code string) Result {
	value, ok := rates.Rates[code]
	if !ok {
		value = math.NaN()
	}
	return Result{Date: date, Value: value}
}

// Failed builds a Result for a date whose fetch returned err.
func Failed(date window.DateKey, err error) Result {
	return Result{Date: date, Value: math.NaN(), Error: err}
}

// OK reports whether the fetch for this date succeeded.
func (r Result) OK() bool {
	return r.Error == nil
}
