package schedule

import "strings"

// CellState is the power state of a single slot.
type CellState string

// Values: "yes" (power on), "no" (power off), "maybe" (possible outage),
// "first"/"mfirst" (off during the first half of the slot),
// "second"/"msecond" (off during the second half).
const (
	StateAbsent  CellState = ""
	StateYes     CellState = "yes"
	StateNo      CellState = "no"
	StateMaybe   CellState = "maybe"
	StateFirst   CellState = "first"
	StateMFirst  CellState = "mfirst"
	StateSecond  CellState = "second"
	StateMSecond CellState = "msecond"
)

// Interval is a half-open outage window in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Classify normalizes a raw state code. Unknown codes are passed through.
func Classify(raw string) CellState {
	return CellState(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether s is one of the recognised state codes.
func (s CellState) Known() bool {
	switch s {
	case StateYes, StateNo, StateMaybe, StateFirst, StateMFirst, StateSecond, StateMSecond:
		return true
	}
	return false
}

// FirstHalf reports whether s means an outage in the first half of a slot.
func (s CellState) FirstHalf() bool { return s == StateFirst || s == StateMFirst }

// SecondHalf reports whether s means an outage in the second half of a slot.
func (s CellState) SecondHalf() bool { return s == StateSecond || s == StateMSecond }

// HalfHourSplit returns the outage part of the slot [start, end) for state s.
// The split point is start+30 capped at end, so short slots still split.
func HalfHourSplit(s CellState, start, end int) (Interval, bool) {
	mid := min(start+30, end)
	switch {
	case s == StateNo:
		return Interval{Start: start, End: end}, true
	case s.FirstHalf():
		return Interval{Start: start, End: mid}, true
	case s.SecondHalf():
		return Interval{Start: mid, End: end}, true
	}
	return Interval{}, false
}
