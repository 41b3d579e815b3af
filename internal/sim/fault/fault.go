// Package fault holds the error kinds shared by every generation stage.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrNotHalting marks a bounded loop that ran out of steps.
	ErrNotHalting = errors.New("not halting")
	// ErrNoContinuation marks a phrase graph walk that hit a dead end.
	ErrNoContinuation = errors.New("no continuation")
	// ErrConfig marks invalid flags, seeds or tuning files.
	ErrConfig = errors.New("config error")
)

// NotHalting wraps ErrNotHalting with the loop name and its budget.
func NotHalting(what string, budget int) error {
	return fmt.Errorf("%s exceeded %d steps: %w", what, budget, ErrNotHalting)
}

// Config wraps ErrConfig.
func Config(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfig)
}

// GenerationFailure aborts a single cavern. The orchestrator produces it at
// a stage boundary; it never carries a partial diorama.
type GenerationFailure struct {
	Seed  uint32
	Stage string
	Err   error
	Stack string
}

func (f *GenerationFailure) Error() string {
	return fmt.Sprintf("seed 0x%08X failed in %s: %v", f.Seed, f.Stage, f.Err)
}

func (f *GenerationFailure) Unwrap() error { return f.Err }

// PlacementWarning is non-fatal: something could not be placed and the
// cavern continues without it.
type PlacementWarning struct {
	Planner int
	What    string
	Placed  int
	Wanted  int
}

func (w *PlacementWarning) Error() string {
	return fmt.Sprintf("planner %d: placed %d/%d %s", w.Planner, w.Placed, w.Wanted, w.What)
}
