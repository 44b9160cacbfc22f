package window

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestGenerate_LengthAndOrder(t *testing.T) {
	now := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.Local)

	for _, days := range []int{0, 1, 7, 30, 400} {
		dates, err := Generate(days, now)
		if err != nil {
			t.Fatalf("Generate(%d) returned unexpected error: %v", days, err)
		}

		if len(dates) != days+1 {
			t.Fatalf("len(Generate(%d)) = %d, want %d", days, len(dates), days+1)
		}

		if got := dates[len(dates)-1]; got != "2024-06-15" {
			t.Errorf("last date = %q, want 2024-06-15", got)
		}

		for i := 1; i < len(dates); i++ {
			prev, err := time.ParseInLocation(Layout, string(dates[i-1]), time.Local)
			if err != nil {
				t.Fatalf("invalid date key %q: %v", dates[i-1], err)
			}
			if got := Key(prev.AddDate(0, 0, 1)); got != dates[i] {
				t.Errorf("dates[%d] = %q, want %q", i, dates[i], got)
			}
		}
	}
}

func TestGenerate_CrossesBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		days     int
		expected []DateKey
	}{
		{
			name:     "month boundary",
			now:      time.Date(2024, time.March, 2, 0, 5, 0, 0, time.Local),
			days:     3,
			expected: []DateKey{"2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"},
		},
		{
			name:     "year boundary",
			now:      time.Date(2025, time.January, 1, 23, 59, 0, 0, time.Local),
			days:     2,
			expected: []DateKey{"2024-12-30", "2024-12-31", "2025-01-01"},
		},
		{
			name:     "single day",
			now:      time.Date(2023, time.July, 4, 12, 0, 0, 0, time.Local),
			days:     0,
			expected: []DateKey{"2023-07-04"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates, err := Generate(tt.days, tt.now)
			if err != nil {
				t.Fatalf("Generate() returned unexpected error: %v", err)
			}
			if len(dates) != len(tt.expected) {
				t.Fatalf("Generate() = %v, want %v", dates, tt.expected)
			}
			for i := range dates {
				if dates[i] != tt.expected[i] {
					t.Errorf("dates[%d] = %q, want %q", i, dates[i], tt.expected[i])
				}
			}
		})
	}
}

func TestGenerate_DSTTransition(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	now := time.Date(2024, time.March, 11, 0, 30, 0, 0, loc)
	dates, err := Generate(2, now)
	if err != nil {
		t.Fatalf("Generate() returned unexpected error: %v", err)
	}

	expected := []DateKey{"2024-03-09", "2024-03-10", "2024-03-11"}
	for i := range expected {
		if dates[i] != expected[i] {
			t.Errorf("dates[%d] = %q, want %q", i, dates[i], expected[i])
		}
	}
}

func TestGenerate_NegativeDays(t *testing.T) {
	_, err := Generate(-1, time.Now())
	if err == nil {
		t.Fatal("Generate(-1) expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Generate(-1) error = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerate_TooManyDays(t *testing.T) {
	now := time.Date(2024, time.June, 15, 9, 30, 0, 0, time.Local)

	dates, err := Generate(MaxDays, now)
	if err != nil {
		t.Fatalf("Generate(MaxDays) returned unexpected error: %v", err)
	}
	if len(dates) != MaxDays+1 {
		t.Errorf("len(Generate(MaxDays)) = %d, want %d", len(dates), MaxDays+1)
	}

	for _, days := range []int{MaxDays + 1, math.MaxInt32, math.MaxInt} {
		if _, err := Generate(days, now); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Generate(%d) error = %v, want ErrInvalidArgument", days, err)
		}
	}
}

func TestSameDay(t *testing.T) {
	now := time.Date(2024, time.June, 15, 0, 0, 1, 0, time.Local)

	tests := []struct {
		name     string
		captured time.Time
		expected bool
	}{
		{"same instant", now, true},
		{"late same day", time.Date(2024, time.June, 15, 23, 59, 59, 0, time.Local), true},
		{"one second before midnight", time.Date(2024, time.June, 14, 23, 59, 59, 0, time.Local), false},
		{"same day previous year", time.Date(2023, time.June, 15, 12, 0, 0, 0, time.Local), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SameDay(tt.captured, now); got != tt.expected {
				t.Errorf("SameDay(%v, %v) = %v, want %v", tt.captured, now, got, tt.expected)
			}
		})
	}
}
