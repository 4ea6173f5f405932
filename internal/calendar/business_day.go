// Package calendar implements the business-day calendar iterator of
// spec.md §2.2: given a date and a signed count, it yields the date
// shifted by that many business days using the tick-store adapter's
// IsBusinessDay predicate.
//
// Grounded on original_source/src/business_day_iterator.hh's
// business_day_functor, which walks one calendar day at a time and
// re-tests the predicate rather than computing a closed-form offset
// (the predicate is provider-defined and may not be a pure weekday rule).
package calendar

import (
	"sync"
	"time"
)

// IsBusinessDayFunc mirrors tickstore.Adapter.IsBusinessDay without
// importing the tickstore package, so calendar has no dependency on the
// adapter's wider surface — only the one predicate it needs.
type IsBusinessDayFunc func(unixSec int64) bool

// Calendar walks business days backward or forward from a given date,
// memoizing predicate results per calendar day.
//
// The memoization cache is a direct performance supplement (spec_full.md
// §5) over the same walk described in business_day_iterator.hh; it does
// not change which days are considered business days.
type Calendar struct {
	isBusinessDay IsBusinessDayFunc

	mu        sync.Mutex
	cache     map[int64]bool // unix-day -> is business day
	cacheSize int
	order     []int64 // insertion order, for simple FIFO eviction
}

// DefaultCacheSize bounds the memoization cache at roughly 11 years of
// calendar days, per spec_full.md §5.
const DefaultCacheSize = 4096

// New returns a Calendar backed by pred, memoizing up to cacheSize
// distinct calendar days (0 or negative selects DefaultCacheSize).
func New(pred IsBusinessDayFunc, cacheSize int) *Calendar {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Calendar{
		isBusinessDay: pred,
		cache:         make(map[int64]bool, cacheSize),
		cacheSize:     cacheSize,
	}
}

func unixDay(t time.Time) int64 {
	return t.Unix() / 86400
}

func (c *Calendar) isBusiness(t time.Time) bool {
	day := unixDay(t)
	c.mu.Lock()
	if v, ok := c.cache[day]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := c.isBusinessDay(t.Unix())

	c.mu.Lock()
	if len(c.cache) >= c.cacheSize {
		// evict oldest
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.cache, oldest)
	}
	c.cache[day] = v
	c.order = append(c.order, day)
	c.mu.Unlock()

	return v
}

// NearestBusinessDay walks d backward (or forward, if d is already not a
// business day and future-walk is desired — this provider only ever walks
// backward per spec.md §4.4) one calendar day at a time until the
// predicate is satisfied, and returns that date.
func (c *Calendar) NearestBusinessDay(d time.Time) time.Time {
	for !c.isBusiness(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Shift returns d walked by n business days: backward if n is negative,
// forward if positive. n == 0 returns d unchanged (it is the caller's
// responsibility to ensure d is itself a business day if that matters).
func (c *Calendar) Shift(d time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, step)
		for !c.isBusiness(d) {
			d = d.AddDate(0, 0, step)
		}
	}
	return d
}
