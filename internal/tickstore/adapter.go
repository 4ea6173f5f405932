// Package tickstore defines the contract the bin engine consumes from the
// historical tick store. The proprietary SDK itself is out of scope (see
// spec.md §1); this package only states the interface and offers an
// in-memory reference implementation under ./memstore for tests and the
// development "serve --fixture" mode.
package tickstore

import "context"

// SymbolHandle is an opaque, adapter-assigned handle for a resolved symbol.
// Handles are cheaper to pass around than raw symbol strings once resolved.
type SymbolHandle interface {
	String() string
}

// Trade is a single recorded trade: a price and a volume.
type Trade struct {
	LastPrice  float64
	TickVolume uint64
}

// TradeCallback receives one trade at a time from ForEachTrade, in
// ascending time order. Returning an error stops the cursor early.
type TradeCallback func(Trade) error

// Adapter wraps the external historical trade store. spec.md §6.
type Adapter interface {
	// IsSymbol reports whether name is known to the store.
	IsSymbol(name string) bool

	// SymbolHandle resolves name to a handle for repeated queries.
	SymbolHandle(name string) (SymbolHandle, error)

	// IsBusinessDay reports whether the given UTC unix-second timestamp's
	// local calendar day is a trading day, per the store's provider-
	// defined business-day calendar.
	IsBusinessDay(unixSec int64) bool

	// ForEachTrade streams every trade for handle in [fromUnixSec,
	// toUnixSec) to cb, in forward time order. No partial delivery: each
	// call to cb sees one complete Trade.
	ForEachTrade(ctx context.Context, handle SymbolHandle, fromUnixSec, toUnixSec int64, cb TradeCallback) error
}
