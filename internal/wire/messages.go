// Package wire defines the abstract messages the core exchanges with the
// (out-of-scope) wire codec library and framework. spec.md explicitly
// scopes the codec itself out; this package states only the sum type of
// events and request/response shapes the rest of the system programs
// against, per spec.md §9's "Event ∈ {Connection, ActiveClient,
// InactiveClient, SolicitedItem{Login|Directory|Dictionary|Item},
// CmdError}" design note.
package wire

// EventKind discriminates the sum type of events delivered by the wire
// framework's dispatch task to a client session's handler.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventConnection
	EventActiveClient
	EventInactiveClient
	EventSolicitedItem
	EventCmdError
)

// ModelType identifies the RDM message model of a solicited item event.
type ModelType int

const (
	ModelUnknown ModelType = iota
	ModelLogin
	ModelDirectory
	ModelDictionary
	ModelMarketPrice
)

// InteractionType identifies the requested interaction semantics of a
// solicited item event, per spec.md §4.1.1/§4.1.3.
type InteractionType int

const (
	InteractionUnknown InteractionType = iota
	InteractionStreaming
	InteractionPause
	InteractionStreamingPause
	InteractionSnapshot
	InteractionClose
)

// AttribInfo carries the RDM attribute info of a request, where present.
type AttribInfo struct {
	Name        string
	NameType    string
	ServiceName string
	ServiceID   int32
	HasService  bool
}

// Event is the abstract event delivered to a client session's handler.
// Exactly one of the typed fields is meaningful, selected by Kind.
type Event struct {
	Kind EventKind

	// SolicitedItem fields.
	Model           ModelType
	Interaction     InteractionType
	RequestToken    string
	Attrib          AttribInfo
	ItemName        string
	WireMajor       uint8
	WireMinor       uint8
	FilterMask      uint32

	// CmdError fields.
	Err error
}

// RespStatusCode mirrors the RDM status-code taxonomy this provider emits.
type RespStatusCode int

const (
	StatusOK RespStatusCode = iota
	StatusNotAuthorized
	StatusNotFound
	StatusInternalError
)

// StreamState is the RDM stream-state of a response.
type StreamState int

const (
	StreamOpen StreamState = iota
	StreamClosed
	StreamNonStreaming
)

// DataState is the RDM data-state of a response.
type DataState int

const (
	DataOK DataState = iota
	DataSuspect
)

// Status is a status payload: stream/data state plus a taxonomy code.
type Status struct {
	Stream StreamState
	Data   DataState
	Code   RespStatusCode
	Text   string
}

// ElementEntry is one (name, value) pair of an RDM element list, used by
// the login refresh's fixed contract (spec.md §4.1.1).
type ElementEntry struct {
	Name  string
	Value int64
}

// LoginRefresh is the response emitted on accepted login.
type LoginRefresh struct {
	Elements []ElementEntry
}

// ServiceInfo is the SERVICE_INFO filter entry of a directory response.
type ServiceInfo struct {
	Name         string
	Capabilities []string
	Dictionaries []string
}

// ServiceState is the SERVICE_STATE filter entry of a directory response.
type ServiceState struct {
	State              int
	AcceptingRequests  bool
}

// DirectoryEntry is one service's directory map entry.
type DirectoryEntry struct {
	ServiceName string
	Info        *ServiceInfo
	State       *ServiceState
}

// DirectoryRefresh is the full or filtered directory response.
type DirectoryRefresh struct {
	Entries []DirectoryEntry
}

// ItemRefresh is a one-shot snapshot response carrying encoded fields.
// The concrete field payload is produced by internal/fields and attached
// opaquely here; wire does not know its shape.
type ItemRefresh struct {
	ServiceID  int32
	ModelType  ModelType
	ItemName   string
	Fields     interface{}
}
