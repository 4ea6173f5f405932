package session

import (
	"context"

	"github.com/steve-o/gomi/internal/itemname"
	"github.com/steve-o/gomi/internal/transport"
	"github.com/steve-o/gomi/internal/wire"
)

// handleItem implements spec.md §4.1.3/§4.1.4.
func (s *Session) handleItem(ctx context.Context, ev wire.Event) {
	if !s.loggedIn {
		s.closeItem(ev.RequestToken, wire.StatusNotAuthorized)
		return
	}
	if ev.Model != wire.ModelMarketPrice {
		s.closeItem(ev.RequestToken, wire.StatusNotFound)
		return
	}

	s.learnServiceID(ev)

	switch ev.Interaction {
	case wire.InteractionClose:
		s.prov.Requests.Erase(ev.RequestToken)
	case wire.InteractionStreaming:
		s.closeItem(ev.RequestToken, wire.StatusNotAuthorized)
	case wire.InteractionSnapshot:
		s.dispatchSnapshot(ev)
	default:
		s.stats.DiscardedEvents++
	}
}

// learnServiceID implements spec.md §3/§4.1.3's "service id advertised in
// the directory is learned at most once, from the first item request
// naming the service by string".
func (s *Session) learnServiceID(ev wire.Event) {
	if !ev.Attrib.HasService || ev.Attrib.ServiceName != s.prov.Directory.Name() {
		return
	}
	if s.prov.Directory.LearnServiceID(int64(ev.Attrib.ServiceID)) {
		s.log.Info("session: detected service id", "service_id", ev.Attrib.ServiceID, "service_name", ev.Attrib.ServiceName)
	}
}

func (s *Session) closeItem(token string, code wire.RespStatusCode) {
	s.prov.Submit(s.handle, wire.Status{
		Stream: wire.StreamClosed,
		Data:   wire.DataSuspect,
		Code:   code,
	}, nil)
	s.prov.Requests.Erase(token)
}

// dispatchSnapshot implements spec.md §4.1.4: resolve the symbol, reject
// unknown symbols with NotFound, drop duplicate tokens with a counter,
// otherwise register the token and enqueue a SNAPSHOT envelope.
func (s *Session) dispatchSnapshot(ev wire.Event) {
	symbol, _, err := itemname.Parse(ev.ItemName, s.seed, s.zones)
	if err != nil || !s.adapter.IsSymbol(symbol) {
		s.closeItem(ev.RequestToken, wire.StatusNotFound)
		return
	}
	if s.symbols != nil && !s.symbols.Allowed(symbol) {
		s.closeItem(ev.RequestToken, wire.StatusNotFound)
		return
	}

	if !s.prov.Requests.Insert(ev.RequestToken, s) {
		s.stats.DuplicateRequests++
		return
	}
	s.stats.ItemRequests++

	env, err := transport.EncodeEnvelope(transport.Request{
		Kind:         transport.KindSnapshot,
		RequestToken: ev.RequestToken,
		ServiceID:    ev.Attrib.ServiceID,
		ModelType:    int32(ev.Model),
		ItemName:     ev.ItemName,
		WireMajor:    s.wireMajor,
		WireMinor:    s.wireMinor,
	}, s.codec)
	if err != nil {
		s.log.Error("session: encode envelope failed", "item_name", ev.ItemName, "err", err)
		s.prov.Requests.Erase(ev.RequestToken)
		return
	}

	if err := s.queue.Enqueue(env); err != nil {
		s.log.Error("session: enqueue failed", "item_name", ev.ItemName, "err", err)
		s.prov.Requests.Erase(ev.RequestToken)
	}
}
