// Package session implements the per-connection client session state
// machine of spec.md §4.1: CONNECTED -> LOGGED_IN <-> CLOSING -> CLOSED,
// driven entirely by events the wire framework's single event-dispatch
// task delivers to onSolicitedItemEvent/onInactiveClientSession.
//
// Grounded on kgo's single-goroutine-owns-these-fields discipline: the
// teacher never locks broker state that only its one event-handling
// goroutine touches, and generalizes directly here — a Session's fields
// are read and written only from the event-dispatch task, so no locks
// guard them within callback scope (spec.md §5).
package session

import (
	"context"
	"time"

	"github.com/steve-o/gomi/internal/binengine"
	"github.com/steve-o/gomi/internal/cool"
	"github.com/steve-o/gomi/internal/itemname"
	"github.com/steve-o/gomi/internal/logging"
	"github.com/steve-o/gomi/internal/provider"
	"github.com/steve-o/gomi/internal/tickstore"
	"github.com/steve-o/gomi/internal/transport"
	"github.com/steve-o/gomi/internal/wire"
)

// State is one of the four client-session states of spec.md §4.1.
type State int

const (
	StateConnected State = iota
	StateLoggedIn
	StateClosing
	StateClosed
)

// SymbolAllowlist optionally narrows which symbols a snapshot request may
// resolve to, independent of the tick-store adapter's own universe. A nil
// allowlist imposes no restriction.
type SymbolAllowlist interface {
	Allowed(symbol string) bool
}

// Stats are the lightweight per-session counters surfaced for
// introspection; not specified field-by-field by spec.md §3's "stats"
// placeholder, so kept minimal and additive.
type Stats struct {
	ItemRequests       int64
	DuplicateRequests  int64
	DiscardedEvents    int64
}

// Session is one client connection. Its exported methods are the
// "operations the session exposes to the wire layer" of spec.md §4.1;
// every one of them must run on the event-dispatch task.
type Session struct {
	handle  string
	address string

	state     State
	loggedIn  bool
	loginToken string
	userName  string
	wireMajor uint8
	wireMinor uint8

	coolRecord *cool.Record

	stats Stats

	prov    *provider.Provider
	queue   *transport.Queue
	cools   *cool.Registry
	adapter tickstore.Adapter
	seed    binengine.BinDecl
	zones   itemname.Zones
	codec   transport.CodecKind
	symbols SymbolAllowlist
	log     logging.Logger
	now     func() time.Time
}

// Deps bundles a Session's collaborators, shared across every session
// the provider accepts.
type Deps struct {
	Provider *provider.Provider
	Queue    *transport.Queue
	Cool     *cool.Registry
	Adapter  tickstore.Adapter
	Seed     binengine.BinDecl
	Zones    itemname.Zones
	Codec    transport.CodecKind
	Symbols  SymbolAllowlist
	Log      logging.Logger
	Now      func() time.Time
}

// New returns a freshly CONNECTED session for handle/address. The
// session is not yet registered with the provider; the orchestrator's
// accept path is responsible for calling deps.Provider.Accept(sess).
func New(handle, address string, deps Deps) *Session {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Log
	if log == nil {
		log = logging.Nop{}
	}
	return &Session{
		handle:  handle,
		address: address,
		state:   StateConnected,
		prov:    deps.Provider,
		queue:   deps.Queue,
		cools:   deps.Cool,
		adapter: deps.Adapter,
		seed:    deps.Seed,
		zones:   deps.Zones,
		codec:   deps.Codec,
		symbols: deps.Symbols,
		log:     log,
		now:     now,
	}
}

// Handle satisfies provider.ClientSession.
func (s *Session) Handle() string { return s.handle }

// WireVersion satisfies provider.ClientSession.
func (s *Session) WireVersion() (major, minor uint8) { return s.wireMajor, s.wireMinor }

// RecordActivity satisfies provider.ClientSession; a no-op placeholder
// hook for future idle-timeout bookkeeping (spec.md §5 leaves client-
// session idle policy to the wire framework, out of scope here).
func (s *Session) RecordActivity() {}

// State reports the session's current state.
func (s *Session) State() State { return s.state }

// Stats reports a copy of the session's counters.
func (s *Session) Stats() Stats { return s.stats }

// onActiveClient records the negotiated wire version, per spec.md §8's
// "wireMajor, wireMinor are set before any item event is processed".
func (s *Session) OnActiveClient(major, minor uint8) {
	s.wireMajor = major
	s.wireMinor = minor
}

// OnSolicitedItemEvent dispatches ev by message-model type, per spec.md
// §4.1's onSolicitedItemEvent operation.
func (s *Session) OnSolicitedItemEvent(ctx context.Context, ev wire.Event) {
	switch ev.Model {
	case wire.ModelLogin:
		s.handleLogin(ev)
	case wire.ModelDirectory:
		s.handleDirectory(ev)
	case wire.ModelDictionary:
		s.log.Info("session: dictionary request ignored (not supplied)", "handle", s.handle)
		s.stats.DiscardedEvents++
	default:
		// MARKET_PRICE and every other item-class model (including
		// ModelUnknown) reach handleItem, which rejects anything but
		// MARKET_PRICE with NotFound, per spec.md §4.1.3.
		s.handleItem(ctx, ev)
	}
}

// OnInactiveClientSession transitions to CLOSED, releases the session
// from the provider's client registry, notifies any bound COOL record,
// and drops outstanding request tokens. spec.md §4.1.
func (s *Session) OnInactiveClientSession() {
	s.state = StateClosed
	s.prov.Release(s.handle)
	s.prov.Requests.EraseAllFor(s.handle)
	if s.coolRecord != nil {
		s.coolRecord.OnOutage(s.now())
	}
}
