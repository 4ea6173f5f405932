package provider

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/steve-o/gomi/internal/wire"
)

// ErrCapacity is returned by Accept when the session would exceed
// sessionCapacity or the provider is not accepting new connections,
// spec.md §4.5's "Inactive/Reject".
var ErrCapacity = errors.New("provider: at capacity or not accepting connections")

// Transport is the narrow view of the wire layer the provider needs to
// deliver a response, satisfied by whatever session/connection object the
// orchestrator wires in. Kept narrow and one-directional for the same
// reason ClientSession is: provider must never import session.
type Transport interface {
	// Send delivers an encoded response for the session identified by
	// handle. Errors are a Transient wire error (spec.md §7); the
	// provider counts them but never retries.
	Send(handle string, response wire.Status, payload interface{}) error
}

// Provider is the spec.md §4.5 component: owns session/request
// registries and the service directory, and is the sole path by which a
// worker-computed response reaches the wire.
//
// Grounded on kgo's broker.do/waitResp (submit never blocks correctness
// on the caller's goroutine — any task may call Submit) and
// cxn.init/closeConn's accept/release symmetry (Accept and Reject are the
// two exits of the same decision point, exactly one of which always
// fires).
type Provider struct {
	Clients   *ClientRegistry
	Requests  *RequestRegistry
	Directory *ServiceDirectory

	transport Transport

	// acceptingConnections is flipped by the orchestrator's shutdown path
	// while Accept is read concurrently from the session-accept path
	// (spec.md §4.5); stored as 0/1 and accessed only through sync/atomic,
	// the same discipline as transientSubmitErrors below.
	acceptingConnections int32
	sessionCapacity      int

	// transientSubmitErrors is written from every worker goroutine that
	// calls Submit/SendReply concurrently (spec.md §5's "submit is safe to
	// call from any task"); accessed only through sync/atomic, matching
	// ClientRegistry.minVersion.
	transientSubmitErrors int64
}

// New returns a Provider wired to transport, with the given service name
// and session capacity. Starts accepting connections.
func New(transport Transport, serviceName string, sessionCapacity int) *Provider {
	p := &Provider{
		Clients:         NewClientRegistry(),
		Requests:        NewRequestRegistry(),
		Directory:       NewServiceDirectory(serviceName),
		transport:       transport,
		sessionCapacity: sessionCapacity,
	}
	atomic.StoreInt32(&p.acceptingConnections, 1)
	return p
}

// SetAcceptingConnections toggles whether Accept admits new sessions,
// used by the orchestrator during shutdown (spec.md §4.7).
func (p *Provider) SetAcceptingConnections(accepting bool) {
	var v int32
	if accepting {
		v = 1
	}
	atomic.StoreInt32(&p.acceptingConnections, v)
}

// Accept applies the accept policy of spec.md §4.5: reject when not
// accepting connections or at sessionCapacity, otherwise register sess
// and fold its wire version into the provider-wide minimum.
func (p *Provider) Accept(sess ClientSession) error {
	if atomic.LoadInt32(&p.acceptingConnections) == 0 || p.Clients.Len() >= p.sessionCapacity {
		return ErrCapacity
	}
	p.Clients.Add(sess)
	return nil
}

// Release removes sess's handle from the client registry, for use by
// onInactiveClientSession (spec.md §4.1) and by orchestrator teardown.
func (p *Provider) Release(handle string) {
	p.Clients.Remove(handle)
}

// Submit forwards status and payload for the session identified by handle
// to the wire layer. It does not touch the request registry; callers that
// want the token erased and the owning session's activity recorded
// should call SendReply instead. spec.md §4.5.
func (p *Provider) Submit(handle string, status wire.Status, payload interface{}) error {
	if err := p.transport.Send(handle, status, payload); err != nil {
		atomic.AddInt64(&p.transientSubmitErrors, 1)
		return errors.Wrap(err, "provider: submit")
	}
	return nil
}

// SendReply looks up the weak session pointer for token, submits the
// response to it, erases the token, and records activity on the session.
// A missing weak pointer (the session already closed) is a no-op, per
// spec.md §4.5 — this is the expected outcome of the race between worker
// completion and client disconnect, not an error.
func (p *Provider) SendReply(token string, status wire.Status, payload interface{}) error {
	sess, ok := p.Requests.Lookup(token)
	if !ok {
		return nil
	}
	p.Requests.Erase(token)

	if err := p.Submit(sess.Handle(), status, payload); err != nil {
		return err
	}
	sess.RecordActivity()
	return nil
}

// TransientSubmitErrors reports the number of Submit calls that returned
// an error, per spec.md §7's "Transient wire error... counted, no retry".
func (p *Provider) TransientSubmitErrors() int64 {
	return atomic.LoadInt64(&p.transientSubmitErrors)
}

// Clear empties both registries, for use by orchestrator teardown.
// spec.md §8: "After Clear, all registries are empty."
func (p *Provider) Clear() {
	p.Clients.Clear()
	p.Requests.Clear()
}
