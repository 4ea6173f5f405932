// Package orchestrator owns lifecycle: wires every component of spec.md
// §2 together in the construction order of §4.7, drives per-session
// wire events to the right session.Session, and tears everything down in
// reverse order on shutdown.
//
// Grounded on kgo's Client constructor/Close() symmetry (one call builds
// the full dependency graph, one call unwinds it) plus the teacher's
// stopForever drain-then-join sequence, generalized to the full chain
// tick-store -> calendar -> bins -> wire session -> provider -> transport
// -> workers -> event-dispatch -> admin.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/steve-o/gomi/internal/binengine"
	"github.com/steve-o/gomi/internal/calendar"
	"github.com/steve-o/gomi/internal/config"
	"github.com/steve-o/gomi/internal/cool"
	"github.com/steve-o/gomi/internal/itemname"
	"github.com/steve-o/gomi/internal/logging"
	"github.com/steve-o/gomi/internal/provider"
	"github.com/steve-o/gomi/internal/session"
	"github.com/steve-o/gomi/internal/symbolmap"
	"github.com/steve-o/gomi/internal/tickstore"
	"github.com/steve-o/gomi/internal/transport"
	"github.com/steve-o/gomi/internal/wire"
	"github.com/steve-o/gomi/internal/worker"
)

// Orchestrator is the spec.md §4.7 lifecycle owner.
type Orchestrator struct {
	Config   *config.Config
	Provider *provider.Provider
	Queue    *transport.Queue
	Cool     *cool.Registry
	Calendar *calendar.Calendar
	Engine   *binengine.Engine
	Workers  *worker.Pool
	Symbols  *symbolmap.Watcher // nil unless Config.SymbolmapPath is set

	deps session.Deps
	log  logging.Logger

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// defaultSeedName is the bin-table row (or synthesized fallback) used to
// seed an item request's BinDecl before query-key overrides are applied,
// per spec.md §4.1.4.
const defaultSeedName = "DEFAULT"

// New constructs every component in spec.md §4.7's order: tick-store
// adapter (given by the caller — the proprietary SDK is out of scope) ->
// time-zone DB -> bin declarations -> provider -> transport -> worker
// pool. Event-dispatch and any optional SNMP/command surface are owned
// by the caller, not this package (spec.md §1 Non-goals).
func New(cfg *config.Config, wireTransport provider.Transport, adapter tickstore.Adapter, log logging.Logger) (*Orchestrator, error) {
	if log == nil {
		log = logging.Nop{}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	seed, err := resolveSeed(cfg, loc)
	if err != nil {
		return nil, err
	}

	cal := calendar.New(adapter.IsBusinessDay, 0)
	engine := binengine.New(adapter, cal)

	codec, err := cfg.Codec()
	if err != nil {
		return nil, err
	}

	prov := provider.New(wireTransport, cfg.Service.Name, cfg.SessionCapacity)
	queue := transport.NewQueue(cfg.Transport.QueueCap)
	coolRegistry := cool.NewRegistry(cfg.COOL.HistoryTableSize)

	// Pre-register COOL names before the wire session opens, per
	// original_source/src/gomi.cc and SPEC_FULL.md §4.6 supplemental
	// detail, so the very first login for a pre-registered name can bind.
	registeredAt := time.Now()
	for _, name := range cfg.COOL.Names {
		coolRegistry.Register(name, registeredAt)
	}

	zones := &itemname.StdZones{}

	var symbols *symbolmap.Watcher
	if cfg.SymbolmapPath != "" {
		symbols, err = symbolmap.NewWatcher(cfg.SymbolmapPath, log)
		if err != nil {
			return nil, errors.Wrap(err, "orchestrator: symbolmap")
		}
	}

	pool := worker.New(worker.Config{
		Queue:    queue,
		Engine:   engine,
		Adapter:  adapter,
		Submit:   prov,
		FIDs:     cfg.Archive,
		Realtime: cfg.Realtime,
		Seed:     seed,
		Zones:    zones,
		Log:      log,
	})

	// A typed-nil *symbolmap.Watcher must not be assigned into the
	// session.SymbolAllowlist interface directly: doing so would produce a
	// non-nil interface value wrapping a nil pointer, and every Allowed
	// call would then run against a nil receiver. Leave deps.Symbols as a
	// true nil interface whenever no symbol map was configured.
	var allowlist session.SymbolAllowlist
	if symbols != nil {
		allowlist = symbols
	}

	return &Orchestrator{
		Config:   cfg,
		Provider: prov,
		Queue:    queue,
		Cool:     coolRegistry,
		Calendar: cal,
		Engine:   engine,
		Workers:  pool,
		Symbols:  symbols,
		log:      log,
		sessions: make(map[string]*session.Session),
		deps: session.Deps{
			Provider: prov,
			Queue:    queue,
			Cool:     coolRegistry,
			Adapter:  adapter,
			Seed:     seed,
			Zones:    zones,
			Codec:    codec,
			Symbols:  allowlist,
			Log:      log,
		},
	}, nil
}

// resolveSeed builds the default BinDecl query-override seed from cfg:
// the "DEFAULT" row of a configured bin table if present, otherwise one
// row of that table (which one is not defined when it has several), or a
// full-day window when no table is configured or the table is empty, per
// spec.md §4.1.4's "seeded from configuration defaults".
func resolveSeed(cfg *config.Config, loc *time.Location) (binengine.BinDecl, error) {
	if cfg.BinsPath != "" {
		bins, err := config.LoadBinTable(cfg.BinsPath, loc, cfg.DayCount)
		if err != nil {
			return binengine.BinDecl{}, err
		}
		if decl, ok := bins[defaultSeedName]; ok {
			return decl, nil
		}
		for _, decl := range bins {
			return decl, nil
		}
	}
	return binengine.NewBinDecl(defaultSeedName, 0, 24*time.Hour-time.Second, loc, cfg.DayCount, 0)
}

// AcceptSession applies the provider's accept policy and, on success,
// constructs and registers a session.Session for handle/address. spec.md
// §4.5's accept policy.
func (o *Orchestrator) AcceptSession(handle, address string) (*session.Session, error) {
	sess := session.New(handle, address, o.deps)
	if err := o.Provider.Accept(sess); err != nil {
		return nil, errors.Wrap(err, "orchestrator: accept session")
	}

	o.mu.Lock()
	o.sessions[handle] = sess
	o.mu.Unlock()
	return sess, nil
}

// ActiveClient records the negotiated wire version for handle, per
// spec.md §8's "wireMajor, wireMinor are set before any item event is
// processed".
func (o *Orchestrator) ActiveClient(handle string, major, minor uint8) {
	if sess, ok := o.lookup(handle); ok {
		sess.OnActiveClient(major, minor)
	}
}

// Dispatch routes ev to the session registered under handle, per
// spec.md §4.1's onSolicitedItemEvent. Events for an unknown handle are
// discarded (the session must already be accepted).
func (o *Orchestrator) Dispatch(ctx context.Context, handle string, ev wire.Event) {
	if sess, ok := o.lookup(handle); ok {
		sess.OnSolicitedItemEvent(ctx, ev)
	}
}

func (o *Orchestrator) lookup(handle string) (*session.Session, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.sessions[handle]
	return sess, ok
}

// InactiveSession transitions handle's session to CLOSED and removes it
// from the orchestrator's own bookkeeping. spec.md §4.1's
// onInactiveClientSession.
func (o *Orchestrator) InactiveSession(handle string) {
	sess, ok := o.lookup(handle)
	if !ok {
		return
	}
	sess.OnInactiveClientSession()

	o.mu.Lock()
	delete(o.sessions, handle)
	o.mu.Unlock()
}

// Start spawns the worker pool and, if a symbol map was configured, its
// hot-reload watcher. spec.md §4.7's "worker tasks".
func (o *Orchestrator) Start(ctx context.Context) {
	o.Workers.Start(ctx, o.Config.WorkerCount)
	if o.Symbols != nil {
		o.Symbols.Start(ctx)
	}
}

// Shutdown runs the reverse-order teardown of spec.md §4.7: stop
// accepting new connections, broadcast exactly one ABORT per worker,
// join every worker, close the transport, and clear both registries.
func (o *Orchestrator) Shutdown() {
	o.Provider.SetAcceptingConnections(false)
	o.Queue.BroadcastAbort(o.Config.WorkerCount)
	o.Workers.Wait()
	o.Queue.Close()
	o.Provider.Clear()
	if o.Symbols != nil {
		o.Symbols.Close()
	}
}
