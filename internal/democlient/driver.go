// Package democlient drives one simulated client connection against an
// Orchestrator without a real wire session library attached — the
// "--fixture" demonstration path of cmd/gomi serve. Where a production
// deployment's wire framework would mint a connection handle and a
// request token per outstanding request, this package mints both with
// google/uuid, the same library teranos-QNTX uses for its own
// request-scoped identifiers.
package democlient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/steve-o/gomi/internal/logging"
	"github.com/steve-o/gomi/internal/orchestrator"
	"github.com/steve-o/gomi/internal/wire"
)

// Driver issues a login followed by one snapshot item request per symbol
// in Symbols, against Orch, then closes the session.
type Driver struct {
	Orch     *orchestrator.Orchestrator
	Log      logging.Logger
	UserName string
	Symbols  []string
}

// Run connects, logs in, requests a snapshot of every configured symbol,
// and disconnects once the provider holds no outstanding request token (or
// ctx is done). It blocks for the lifetime of the simulated session;
// callers typically run it in its own goroutine.
func (d *Driver) Run(ctx context.Context) {
	log := d.Log
	if log == nil {
		log = logging.Nop{}
	}

	handle := uuid.NewString()
	if _, err := d.Orch.AcceptSession(handle, "fixture://democlient"); err != nil {
		log.Error("democlient: accept rejected", "err", err)
		return
	}
	defer d.Orch.InactiveSession(handle)

	d.Orch.ActiveClient(handle, 1, 0)

	userName := d.UserName
	if userName == "" {
		userName = "DEMOUSER"
	}

	d.Orch.Dispatch(ctx, handle, wire.Event{
		Kind:        wire.EventSolicitedItem,
		Model:       wire.ModelLogin,
		Interaction: wire.InteractionStreaming,
		Attrib: wire.AttribInfo{
			Name:     userName,
			NameType: "USER_NAME",
		},
	})

	for _, symbol := range d.Symbols {
		select {
		case <-ctx.Done():
			return
		default:
		}

		d.Orch.Dispatch(ctx, handle, wire.Event{
			Kind:         wire.EventSolicitedItem,
			Model:        wire.ModelMarketPrice,
			Interaction:  wire.InteractionSnapshot,
			RequestToken: uuid.NewString(),
			ItemName:     symbol,
		})
	}

	// SendReply erases a token once its response is out; closing earlier
	// would drop the outstanding tokens and with them the responses.
	for d.Orch.Provider.Requests.Len() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// RunOnce is a convenience wrapper for callers that just want one
// synchronous demonstration pass with a short settle delay so the worker
// pool's responses have time to flush before the caller moves on.
func RunOnce(ctx context.Context, d *Driver, settle time.Duration) {
	d.Run(ctx)
	if settle > 0 {
		timer := time.NewTimer(settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}
