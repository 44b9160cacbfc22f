package ratecache

import (
	"encoding/json"
	"math"
	"time"

	"fxtrend/internal/window"
)

// Snapshot is one currency's cached historical rates and when they were captured.
type Snapshot struct {
	CapturedAt time.Time
	Rates      map[window.DateKey]float64
}

// Rate returns the cached rate for date, or NaN when the date is not covered.
func (s Snapshot) Rate(date window.DateKey) float64 {
	if v, ok := s.Rates[date]; ok {
		return v
	}
	return math.NaN()
}

// IsFresh reports whether s was captured on now's calendar day. Freshness
// belongs to the whole snapshot: a snapshot with gaps captured today is
// still fresh.
func IsFresh(s Snapshot, now time.Time) bool {
	if s.CapturedAt.IsZero() {
		return false
	}
	return window.SameDay(s.CapturedAt, now)
}

// snapshotJSON is the persisted layout. capturedAt is epoch milliseconds.
type snapshotJSON struct {
	CapturedAt int64              `json:"capturedAt"`
	Rates      map[string]float64 `json:"rates"`
}

// MarshalJSON omits NaN and infinite rates, which JSON cannot carry; an
// omitted date reads back as NaN through Rate.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		CapturedAt: s.CapturedAt.UnixMilli(),
		Rates:      make(map[string]float64, len(s.Rates)),
	}
	for date, v := range s.Rates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Rates[string(date)] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. A null rate is skipped so the
// date reads back as NaN rather than zero.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in struct {
		CapturedAt int64               `json:"capturedAt"`
		Rates      map[string]*float64 `json:"rates"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	s.CapturedAt = time.UnixMilli(in.CapturedAt)
	s.Rates = make(map[window.DateKey]float64, len(in.Rates))
	for date, v := range in.Rates {
		if v == nil {
			continue
		}
		s.Rates[window.DateKey(date)] = *v
	}
	return nil
}
