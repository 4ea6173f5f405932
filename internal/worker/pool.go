// Package worker implements the worker pool of spec.md §4.3: N tasks,
// each pulling request envelopes off the request-queue transport,
// running the bin analytic engine, and submitting the response via the
// provider.
//
// Grounded on kgo's handleReqs loop structure (pkg/kgo/broker.go):
// receive → validate → compute → respond, continue-on-error, a single
// defer-guarded teardown per worker goroutine.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/steve-o/gomi/internal/binengine"
	"github.com/steve-o/gomi/internal/fields"
	"github.com/steve-o/gomi/internal/itemname"
	"github.com/steve-o/gomi/internal/logging"
	"github.com/steve-o/gomi/internal/provider"
	"github.com/steve-o/gomi/internal/tickstore"
	"github.com/steve-o/gomi/internal/transport"
	"github.com/steve-o/gomi/internal/wire"
)

// Submitter is the narrow provider surface a worker needs to deliver a
// response, satisfied by *provider.Provider without this package
// depending on anything else of provider's surface.
type Submitter interface {
	SendReply(token string, status wire.Status, payload interface{}) error
}

// Pool owns a fixed number of worker goroutines draining a single
// transport.Queue. spec.md §4.3/§4.7.
type Pool struct {
	queue   *transport.Queue
	engine  *binengine.Engine
	adapter tickstore.Adapter
	sub      Submitter
	fids     fields.ArchiveFIDs
	realtime fields.RealtimeFIDs
	seed    binengine.BinDecl
	zones   itemname.Zones
	log     logging.Logger

	now func() time.Time

	dispatchErrors int64
	mu             sync.Mutex

	wg sync.WaitGroup
}

// Config bundles Pool's dependencies; adapter must be the same tick-store
// adapter engine was constructed with, since a worker additionally
// resolves symbol handles on its own "per-worker view" of the store
// (spec.md §4.3).
type Config struct {
	Queue   *transport.Queue
	Engine  *binengine.Engine
	Adapter tickstore.Adapter
	Submit  Submitter
	FIDs    fields.ArchiveFIDs
	Realtime fields.RealtimeFIDs // optional per-bin-name override of FIDs
	Seed    binengine.BinDecl
	Zones   itemname.Zones
	Log     logging.Logger

	// Now stamps "today" for each computation; defaults to time.Now if nil.
	Now func() time.Time
}

// New constructs a Pool from cfg.
func New(cfg Config) *Pool {
	log := cfg.Log
	if log == nil {
		log = logging.Nop{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pool{
		queue:   cfg.Queue,
		engine:  cfg.Engine,
		adapter: cfg.Adapter,
		sub:      cfg.Submit,
		fids:     cfg.FIDs,
		realtime: cfg.Realtime,
		seed:    cfg.Seed,
		zones:   cfg.Zones,
		log:     log,
		now:     now,
	}
}

// Start spawns n worker goroutines, each running run(ctx) until it reads
// an ABORT envelope. Callers must arrange for transport.Queue.BroadcastAbort
// to be called exactly once with n to guarantee every worker exits.
func (p *Pool) Start(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.run(ctx)
	}
}

// Wait blocks until every worker goroutine started by Start has exited.
// spec.md §4.7's "join workers".
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		// Pending work is taken before an ABORT, so envelopes enqueued
		// ahead of BroadcastAbort are still handled.
		select {
		case env, ok := <-p.queue.Receive():
			if !ok {
				return
			}
			p.handle(ctx, env)
			continue
		default:
		}
		select {
		case <-p.queue.AbortChan():
			return
		case env, ok := <-p.queue.Receive():
			if !ok {
				return
			}
			p.handle(ctx, env)
		}
	}
}

// handle decodes one envelope and, on any dispatch error (parse, engine,
// encode), logs and continues per spec.md §4.3/§7 — the request simply
// goes unanswered rather than retried or re-enqueued.
func (p *Pool) handle(ctx context.Context, env transport.Envelope) {
	req, err := transport.DecodeEnvelope(env)
	if err != nil {
		p.countDispatchError()
		p.log.Error("worker: decode envelope failed", "err", err)
		return
	}
	if req.Kind == transport.KindAbort {
		return
	}

	symbol, decl, err := itemname.Parse(req.ItemName, p.seed, p.zones)
	if err != nil {
		p.countDispatchError()
		p.log.Error("worker: parse item name failed", "item_name", req.ItemName, "err", err)
		return
	}

	handle, err := p.adapter.SymbolHandle(symbol)
	if err != nil {
		p.countDispatchError()
		p.log.Error("worker: resolve symbol failed", "symbol", symbol, "err", err)
		return
	}

	result, err := p.engine.Compute(ctx, handle, decl, p.now())
	if err != nil {
		p.countDispatchError()
		p.log.Error("worker: compute failed", "symbol", symbol, "err", err)
		return
	}

	encoded := fields.Encode(result, p.fidsFor(decl.Name))

	status := wire.Status{Stream: wire.StreamNonStreaming, Data: wire.DataOK, Code: wire.StatusOK}
	refresh := wire.ItemRefresh{
		ServiceID: req.ServiceID,
		ModelType: wire.ModelMarketPrice,
		ItemName:  req.ItemName,
		Fields:    encoded,
	}

	if err := p.sub.SendReply(req.RequestToken, status, refresh); err != nil {
		p.log.Warn("worker: submit failed", "token", req.RequestToken, "err", err)
	}
}

// fidsFor resolves the FID set for binName, falling back to the archive
// set when no per-bin realtime override is configured. spec.md §6's
// "Archive FID set and per-bin realtime FID sets".
func (p *Pool) fidsFor(binName string) fields.ArchiveFIDs {
	if ids, ok := p.realtime[binName]; ok {
		return ids
	}
	return p.fids
}

func (p *Pool) countDispatchError() {
	p.mu.Lock()
	p.dispatchErrors++
	p.mu.Unlock()
}

// DispatchErrors reports the count of parse/engine/encode failures, per
// spec.md §7's "log, counter, do not re-enqueue".
func (p *Pool) DispatchErrors() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dispatchErrors
}
