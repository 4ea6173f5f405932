// Package memstore is an in-memory reference implementation of
// tickstore.Adapter, used by tests and the "serve --fixture" development
// mode. It is not part of the specified system; it exists only to exercise
// the bin engine without the proprietary tick-store SDK.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/steve-o/gomi/internal/tickstore"
)

// handle is the trivial SymbolHandle used by Store: the symbol name itself.
type handle string

func (h handle) String() string { return string(h) }

// timedTrade pairs a trade with its UTC unix-second timestamp.
type timedTrade struct {
	at int64
	tickstore.Trade
}

// Store is a fixed, in-memory set of symbols and trades plus a
// weekday-based business-day predicate (Mon–Fri; no built-in holiday
// calendar, only the explicit overrides added with SetHoliday).
type Store struct {
	mu      sync.RWMutex
	trades  map[string][]timedTrade // sorted ascending by `at`
	holiday map[int64]bool          // unix-day (at/86400) -> explicit holiday override
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		trades:  make(map[string][]timedTrade),
		holiday: make(map[int64]bool),
	}
}

// PutTrade appends a trade for symbol at the given UTC unix-second time.
// Trades must be added in non-decreasing time order per symbol; PutTrade
// panics otherwise since this is a test fixture, not production code.
func (s *Store) PutTrade(symbol string, atUnixSec int64, lastPrice float64, tickVolume uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.trades[symbol]
	if len(list) > 0 && list[len(list)-1].at > atUnixSec {
		panic("memstore: PutTrade requires non-decreasing timestamps per symbol")
	}
	s.trades[symbol] = append(list, timedTrade{at: atUnixSec, Trade: tickstore.Trade{LastPrice: lastPrice, TickVolume: tickVolume}})
}

// SetHoliday marks the UTC calendar day containing atUnixSec as a
// non-business day, overriding the default Mon–Fri predicate.
func (s *Store) SetHoliday(atUnixSec int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holiday[atUnixSec/86400] = true
}

func (s *Store) IsSymbol(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.trades[name]
	return ok
}

func (s *Store) SymbolHandle(name string) (tickstore.SymbolHandle, error) {
	if !s.IsSymbol(name) {
		return nil, errors.Newf("memstore: unknown symbol %q", name)
	}
	return handle(name), nil
}

func (s *Store) IsBusinessDay(unixSec int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.holiday[unixSec/86400] {
		return false
	}
	// weekday() without importing time: Jan 1 1970 was a Thursday (epoch
	// day 0 == Thursday == index 4 in a Mon=1..Sun=7 scheme).
	day := unixSec / 86400
	if unixSec < 0 && unixSec%86400 != 0 {
		day--
	}
	weekday := ((day%7)+7+3)%7 + 1 // 1=Mon..7=Sun, Thursday(epoch0)=4
	return weekday >= 1 && weekday <= 5
}

func (s *Store) ForEachTrade(_ context.Context, h tickstore.SymbolHandle, fromUnixSec, toUnixSec int64, cb tickstore.TradeCallback) error {
	s.mu.RLock()
	list := s.trades[h.String()]
	s.mu.RUnlock()

	from := sort.Search(len(list), func(i int) bool { return list[i].at >= fromUnixSec })
	to := sort.Search(len(list), func(i int) bool { return list[i].at >= toUnixSec })
	for i := from; i < to; i++ {
		if err := cb(list[i].Trade); err != nil {
			return err
		}
	}
	return nil
}
