// Package itemname parses the instrument identifier grammar of spec.md
// §6 into a symbol and a BinDecl override of a seed declaration. Shared
// by internal/session (to validate a symbol before enqueueing work) and
// internal/worker (to rebuild the same BinDecl when a worker dequeues
// the envelope).
//
// The grammar is a narrow path+query subset that net/url already parses
// correctly; no pack library implements this specific grammar, so stdlib
// is used here (see DESIGN.md).
package itemname

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/steve-o/gomi/internal/binengine"
)

// maxClamp bounds offset/days per spec.md §4.1.4/§6.
const maxClamp = 90

// Zones resolves a "tz" query value (a region name) to a *time.Location.
// Unknown region names leave the seed's timezone untouched, per spec.md
// §6's "malformed values are ignored (default retained)".
type Zones interface {
	Lookup(region string) (*time.Location, bool)
}

// StdZones resolves region names through the standard library's IANA
// database (time.LoadLocation), memoizing results since the tzdb path of
// spec.md §6 is fixed for the lifetime of the process.
type StdZones struct {
	mu    sync.Mutex
	cache map[string]*time.Location
}

// Lookup implements Zones.
func (z *StdZones) Lookup(region string) (*time.Location, bool) {
	z.mu.Lock()
	defer z.mu.Unlock()
	if z.cache == nil {
		z.cache = make(map[string]*time.Location)
	}
	if loc, ok := z.cache[region]; ok {
		return loc, true
	}
	loc, err := time.LoadLocation(region)
	if err != nil {
		return nil, false
	}
	z.cache[region] = loc
	return loc, true
}

// Parse decomposes raw (path plus optional "?query") into the underlying
// symbol and a BinDecl built from seed, overridden by any recognised
// query keys. Unknown keys are ignored; malformed values leave the
// corresponding seed field untouched.
func Parse(raw string, seed binengine.BinDecl, zones Zones) (symbol string, decl binengine.BinDecl, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", binengine.BinDecl{}, errors.Wrap(err, "itemname: parse")
	}

	symbol = strings.TrimLeft(u.Path, "/")
	if symbol == "" {
		return "", binengine.BinDecl{}, errors.Newf("itemname: empty symbol in %q", raw)
	}

	decl = seed

	q := u.Query()
	if v := q.Get("open"); v != "" {
		if tod, ok := parseTimeOfDay(v); ok {
			decl.StartTime = tod
		}
	}
	if v := q.Get("close"); v != "" {
		if tod, ok := parseTimeOfDay(v); ok {
			decl.EndTime = tod
		}
	}
	if v := q.Get("tz"); v != "" && zones != nil {
		if loc, ok := zones.Lookup(v); ok {
			decl.Timezone = loc
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, ok := parseClampedInt(v); ok {
			decl.DayOffset = n
		}
	}
	if v := q.Get("days"); v != "" {
		if n, ok := parseClampedInt(v); ok {
			decl.DayCount = n
		}
	}

	if decl.EndTime <= decl.StartTime {
		return "", binengine.BinDecl{}, errors.Newf("itemname: %q: endTime must exceed startTime after overrides", raw)
	}

	return symbol, decl, nil
}

// parseTimeOfDay accepts "HH:MM" or "HH:MM:SS" and returns the offset
// from local midnight. Malformed input reports ok=false.
func parseTimeOfDay(v string) (time.Duration, bool) {
	parts := strings.Split(v, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	s := 0
	if len(parts) == 3 {
		s, err = strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, false
		}
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second, true
}

// parseClampedInt parses a non-negative decimal integer, capped at
// maxClamp per spec.md §4.1.4/§6. Negative or malformed input reports
// ok=false so the caller leaves the seed's value untouched.
func parseClampedInt(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	if n > maxClamp {
		n = maxClamp
	}
	return n, true
}
