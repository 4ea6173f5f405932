package provider

import (
	"sync/atomic"

	"github.com/steve-o/gomi/internal/wire"
)

// ServiceDirectory is the static service-directory of spec.md §3: a single
// service advertising MARKET_PRICE with the RWFFld/RWFEnum dictionaries.
// The only mutable piece of state is the service id, which is learned at
// most once from the first item request naming the service by string
// (spec.md §3/§4.1.3); once learned it is stable for the directory's
// lifetime.
type ServiceDirectory struct {
	name         string
	capabilities []string
	dictionaries []string
	acceptingReq int32 // atomic bool: 1 == accepting requests

	serviceID int64 // atomic; 0 == not yet learned (valid ids are > 0)
}

// NewServiceDirectory returns a directory advertising a single service
// under name, starting in the "up, accepting requests" state.
func NewServiceDirectory(name string) *ServiceDirectory {
	d := &ServiceDirectory{
		name:         name,
		capabilities: []string{"MARKET_PRICE"},
		dictionaries: []string{"RWFFld", "RWFEnum"},
	}
	atomic.StoreInt32(&d.acceptingReq, 1)
	return d
}

// Name is the configured service name.
func (d *ServiceDirectory) Name() string { return d.name }

// SetAcceptingRequests toggles the directory's SERVICE_STATE entry,
// allowing the orchestrator to take the service out of rotation during
// shutdown without tearing the directory down outright.
func (d *ServiceDirectory) SetAcceptingRequests(accepting bool) {
	v := int32(0)
	if accepting {
		v = 1
	}
	atomic.StoreInt32(&d.acceptingReq, v)
}

// LearnServiceID records id as this directory's service id, if none has
// been learned yet. Returns true the first time it is called; subsequent
// calls are no-ops regardless of the id passed, per spec.md §3's "once
// learned it is stable".
func (d *ServiceDirectory) LearnServiceID(id int64) bool {
	return atomic.CompareAndSwapInt64(&d.serviceID, 0, id)
}

// ServiceID returns the learned id, if any.
func (d *ServiceDirectory) ServiceID() (int64, bool) {
	id := atomic.LoadInt64(&d.serviceID)
	return id, id != 0
}

// Matches reports whether a directory request naming serviceName and/or
// serviceID (either may be zero-valued/empty to mean "unspecified")
// resolves to this directory's single service.
func (d *ServiceDirectory) Matches(serviceName string, serviceID int64) bool {
	if serviceName != "" && serviceName == d.name {
		return true
	}
	if serviceID != 0 {
		if id, ok := d.ServiceID(); ok && id == serviceID {
			return true
		}
	}
	return false
}

// directoryFilterMask bits, per spec.md §4.1.2's "gated by the request's
// filter mask".
const (
	FilterServiceInfo  = 1 << 0
	FilterServiceState = 1 << 1
)

// Refresh builds the directory response for a request carrying the given
// serviceName/serviceID and filter mask. If neither serviceName nor
// serviceID identifies this directory's service, the full (unfiltered by
// service, but still mask-filtered) directory is returned — spec.md §4.1.2.
func (d *ServiceDirectory) Refresh(serviceName string, serviceID int64, filterMask int) wire.DirectoryRefresh {
	entry := wire.DirectoryEntry{ServiceName: d.name}

	if filterMask&FilterServiceInfo != 0 {
		entry.Info = &wire.ServiceInfo{
			Name:         d.name,
			Capabilities: append([]string(nil), d.capabilities...),
			Dictionaries: append([]string(nil), d.dictionaries...),
		}
	}
	if filterMask&FilterServiceState != 0 {
		entry.State = &wire.ServiceState{
			State:             1,
			AcceptingRequests: atomic.LoadInt32(&d.acceptingReq) != 0,
		}
	}

	return wire.DirectoryRefresh{Entries: []wire.DirectoryEntry{entry}}
}
