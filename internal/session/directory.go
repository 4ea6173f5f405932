package session

import "github.com/steve-o/gomi/internal/wire"

// handleDirectory implements spec.md §4.1.2: filter by the request's
// ServiceName/ServiceID, falling back to the full directory when
// neither matches a known service, gated by the request's filter mask.
func (s *Session) handleDirectory(ev wire.Event) {
	var serviceName string
	var serviceID int64
	if ev.Attrib.HasService {
		serviceName = ev.Attrib.ServiceName
		serviceID = int64(ev.Attrib.ServiceID)
	}
	if serviceID != 0 && !s.prov.Directory.Matches(serviceName, serviceID) {
		s.log.Warn("session: directory request names an unknown service id, returning full directory", "service_id", serviceID, "handle", s.handle)
	}

	refresh := s.prov.Directory.Refresh(serviceName, serviceID, int(ev.FilterMask))

	s.prov.Submit(s.handle, wire.Status{
		Stream: wire.StreamNonStreaming,
		Data:   wire.DataOK,
		Code:   wire.StatusOK,
	}, refresh)
}
