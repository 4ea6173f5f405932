// Package binengine computes bin analytics: a fixed set of statistics over
// a historical tick store for a symbol across a repeated time-of-day window.
package binengine

import (
	"time"

	"github.com/cockroachdb/errors"
)

// BinDecl describes one analytic window: a time-of-day range, the time
// zone it is interpreted in, and how many business days to look back.
//
// BinDecl is immutable once constructed; callers that need a variant
// (different day count, different window) build a new value with NewBinDecl.
type BinDecl struct {
	Name      string
	StartTime time.Duration // time-of-day offset from midnight, local to Timezone
	EndTime   time.Duration
	Timezone  *time.Location
	DayCount  int
	DayOffset int
}

// maxClamp bounds offset/days per spec.md §4.1.4 and §6.
const maxClamp = 90

// NewBinDecl validates and constructs a BinDecl. EndTime must exceed
// StartTime and DayCount must not be negative; a DayCount of 0 is accepted
// and makes Engine.Compute return a null result.
func NewBinDecl(name string, start, end time.Duration, tz *time.Location, dayCount, dayOffset int) (BinDecl, error) {
	if end <= start {
		return BinDecl{}, errors.Newf("binengine: bin %q: endTime (%s) must exceed startTime (%s)", name, end, start)
	}
	if dayCount < 0 {
		return BinDecl{}, errors.Newf("binengine: bin %q: dayCount must be >= 0, got %d", name, dayCount)
	}
	if tz == nil {
		return BinDecl{}, errors.Newf("binengine: bin %q: timezone must not be nil", name)
	}
	return BinDecl{
		Name:      name,
		StartTime: start,
		EndTime:   end,
		Timezone:  tz,
		DayCount:  clamp(dayCount),
		DayOffset: clamp(dayOffset),
	}, nil
}

// clamp caps a day-count-like value at 90, per spec.md's "offset" and
// "days" query-key semantics. It never errors; the cap is silent per spec.
func clamp(n int) int {
	if n > maxClamp {
		return maxClamp
	}
	if n < 0 {
		return 0
	}
	return n
}

// WithDayCount returns a copy of decl with DayCount replaced, clamped to 90.
func (decl BinDecl) WithDayCount(n int) BinDecl {
	decl.DayCount = clamp(n)
	return decl
}

// WithDayOffset returns a copy of decl with DayOffset replaced, clamped to 90.
func (decl BinDecl) WithDayOffset(n int) BinDecl {
	decl.DayOffset = clamp(n)
	return decl
}

// WithWindow returns a copy of decl with the time-of-day window replaced.
func (decl BinDecl) WithWindow(start, end time.Duration) (BinDecl, error) {
	if end <= start {
		return BinDecl{}, errors.Newf("binengine: bin %q: endTime (%s) must exceed startTime (%s)", decl.Name, end, start)
	}
	decl.StartTime, decl.EndTime = start, end
	return decl, nil
}

// WithTimezone returns a copy of decl using a different IANA region.
func (decl BinDecl) WithTimezone(tz *time.Location) BinDecl {
	decl.Timezone = tz
	return decl
}
