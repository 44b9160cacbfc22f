package series

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// State is what a front end renders for the selected currency.
type State struct {
	Code      string
	Points    []Point
	Loading   bool
	Failed    bool
	FromCache bool
	Err       error
}

// Tracker holds the series for the currently selected currency and
// rebuilds it when the selection changes. Every pass carries a generation
// number; a pass that finishes after a newer selection is discarded.
type Tracker struct {
	assembler  *Assembler
	windowSize int

	mu         sync.Mutex
	generation uint64
	state      State
}

// NewTracker creates a Tracker over a. A negative windowSize is passed
// through and surfaces as a failed state.
func NewTracker(a *Assembler, windowSize int) *Tracker {
	return &Tracker{
		assembler:  a,
		windowSize: windowSize,
	}
}

// Select makes code the current currency and rebuilds its series. An empty
// code clears the series without fetching. Selecting the code that is
// already current and loaded is a no-op; use Refresh to force a pass.
func (t *Tracker) Select(ctx context.Context, code string) State {
	code = strings.ToUpper(strings.TrimSpace(code))

	t.mu.Lock()
	if code != "" && code == t.state.Code && (t.state.Loading || (len(t.state.Points) > 0 && !t.state.Failed)) {
		s := t.snapshotLocked()
		t.mu.Unlock()
		return s
	}
	t.mu.Unlock()

	return t.run(ctx, code)
}

// Refresh rebuilds the series for the current code.
func (t *Tracker) Refresh(ctx context.Context) State {
	t.mu.Lock()
	code := t.state.Code
	t.mu.Unlock()

	return t.run(ctx, code)
}

// State returns a copy of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) run(ctx context.Context, code string) State {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	// Failed is reset for every attempt; it only describes the latest pass.
	t.state = State{Code: code}
	t.mu.Unlock()

	if code == "" {
		return t.State()
	}

	result, err := t.assembler.getSeries(ctx, code, t.windowSize, func() {
		t.update(gen, func(s *State) { s.Loading = true })
	})

	applied := t.update(gen, func(s *State) {
		s.Loading = false
		s.Points = result.Points
		s.FromCache = result.FromCache
		s.Err = err
		if err == nil {
			s.Err = result.Err()
		}
		s.Failed = s.Err != nil
	})
	if !applied {
		t.assembler.log.Debug("Discarding superseded series pass", "code", code, "generation", gen)
	}

	return t.State()
}

// update applies fn when gen is still the current generation.
func (t *Tracker) update(gen uint64, fn func(*State)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		return false
	}
	fn(&t.state)
	return true
}

func (t *Tracker) snapshotLocked() State {
	s := t.state
	s.Points = slices.Clone(t.state.Points)
	return s
}
