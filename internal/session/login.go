package session

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/steve-o/gomi/internal/wire"
)

// loginElements is the fixed element-list contract of spec.md §4.1.1,
// emitted verbatim on every accepted login.
var loginElements = []wire.ElementEntry{
	{Name: "AllowSuspectData", Value: 1},
	{Name: "ProvidePermissionExpressions", Value: 0},
	{Name: "ProvidePermissionProfile", Value: 0},
	{Name: "SingleOpen", Value: 0},
}

// deriveLoginToken returns a stable per-session token used only for later
// revocation bookkeeping, not as a security credential (the wire
// framework owns authentication). Grounded on the teacher's use of
// golang.org/x/crypto for connection-scoped derived secrets (SASL SCRAM);
// here the same primitive derives an opaque, collision-resistant handle
// from the session's identity and accept time.
func deriveLoginToken(handle, userName string, at time.Time) string {
	sum := blake2b.Sum256([]byte(handle + "|" + userName + "|" + at.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:16])
}

// handleLogin implements spec.md §4.1.1. ev.Interaction must be exactly
// streaming or streaming|pause and carry an AttribInfo Name/NameType;
// any violation is answered with a reject.
func (s *Session) handleLogin(ev wire.Event) {
	if !validLoginInteraction(ev.Interaction) || ev.Attrib.Name == "" || ev.Attrib.NameType == "" {
		s.rejectLogin(ev)
		return
	}

	s.loggedIn = true
	s.state = StateLoggedIn
	s.userName = ev.Attrib.Name
	s.loginToken = deriveLoginToken(s.handle, s.userName, s.now())

	s.bindCoolRecord()

	s.prov.Submit(s.handle, wire.Status{
		Stream: wire.StreamOpen,
		Data:   wire.DataOK,
		Code:   wire.StatusOK,
	}, wire.LoginRefresh{Elements: loginElements})
}

// validLoginInteraction reports whether flags are exactly streaming or
// streaming|pause. A bare pause request with no streaming bit set is
// rejected like any other malformed login; original_source/src/client.cc's
// "is_pause_request" distinction survives only as a debug log field in
// rejectLogin.
func validLoginInteraction(it wire.InteractionType) bool {
	return it == wire.InteractionStreaming || it == wire.InteractionStreamingPause
}

func (s *Session) rejectLogin(ev wire.Event) {
	s.log.Debug("session: login rejected", "handle", s.handle, "is_pause_request", ev.Interaction == wire.InteractionPause)
	s.state = StateClosing
	s.prov.Submit(s.handle, wire.Status{
		Stream: wire.StreamClosed,
		Data:   wire.DataSuspect,
		Code:   wire.StatusNotAuthorized,
	}, wire.LoginRefresh{})
}

// bindCoolRecord implements spec.md §4.1.1's COOL binding rule: if the
// presented user name matches a pre-registered, currently-offline
// record, bind and call OnRecovery; if it is already online, this is a
// duplicate login and the session is left unbound (warn only).
func (s *Session) bindCoolRecord() {
	if s.cools == nil {
		return
	}
	rec, ok := s.cools.Lookup(s.userName)
	if !ok {
		return
	}
	if rec.Online() {
		s.log.Warn("session: duplicate login for online COOL name", "user_name", s.userName, "handle", s.handle)
		return
	}
	rec.OnRecovery(s.now())
	s.coolRecord = rec
}
