package provider

import (
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/steve-o/gomi/internal/wire"
)

type fakeSession struct {
	handle   string
	major    uint8
	minor    uint8
	activity int
}

func (f *fakeSession) Handle() string                   { return f.handle }
func (f *fakeSession) WireVersion() (uint8, uint8)       { return f.major, f.minor }
func (f *fakeSession) RecordActivity()                   { f.activity++ }

type fakeTransport struct {
	sent []string
	fail bool
}

func (t *fakeTransport) Send(handle string, status wire.Status, payload interface{}) error {
	if t.fail {
		return errors.New("boom")
	}
	t.sent = append(t.sent, handle)
	return nil
}

func TestProviderAcceptCapacity(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr, "GOMI", 1)

	require.NoError(t, p.Accept(&fakeSession{handle: "a", major: 14, minor: 1}))
	require.ErrorIs(t, p.Accept(&fakeSession{handle: "b", major: 14, minor: 1}), ErrCapacity)

	p.SetAcceptingConnections(false)
	p.Release("a")
	require.ErrorIs(t, p.Accept(&fakeSession{handle: "c"}), ErrCapacity)
}

func TestProviderAcceptTracksMinWireVersion(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr, "GOMI", 10)
	require.NoError(t, p.Accept(&fakeSession{handle: "a", major: 14, minor: 1}))
	require.NoError(t, p.Accept(&fakeSession{handle: "b", major: 12, minor: 5}))

	major, minor, ok := p.Clients.MinWireVersion()
	require.True(t, ok)
	require.Equal(t, uint8(12), major)
	require.Equal(t, uint8(5), minor)
}

func TestProviderSendReplyErasesTokenAndRecordsActivity(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr, "GOMI", 10)
	sess := &fakeSession{handle: "a"}
	require.True(t, p.Requests.Insert("tok1", sess))

	require.NoError(t, p.SendReply("tok1", wire.Status{Code: wire.StatusOK}, nil))
	require.Equal(t, 1, sess.activity)
	require.Equal(t, []string{"a"}, tr.sent)

	_, ok := p.Requests.Lookup("tok1")
	require.False(t, ok)
}

func TestProviderSendReplyMissingTokenIsNoop(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr, "GOMI", 10)
	require.NoError(t, p.SendReply("ghost", wire.Status{Code: wire.StatusOK}, nil))
	require.Empty(t, tr.sent)
}

func TestProviderSubmitCountsTransientErrors(t *testing.T) {
	tr := &fakeTransport{fail: true}
	p := New(tr, "GOMI", 10)
	require.Error(t, p.Submit("a", wire.Status{}, nil))
	require.Equal(t, int64(1), p.TransientSubmitErrors())
}

func TestProviderSubmitCountsTransientErrorsConcurrently(t *testing.T) {
	tr := &fakeTransport{fail: true}
	p := New(tr, "GOMI", 10)

	const callers = 50
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_ = p.Submit("a", wire.Status{}, nil)
		}()
	}
	wg.Wait()

	require.Equal(t, int64(callers), p.TransientSubmitErrors())
}

func TestProviderClearEmptiesRegistries(t *testing.T) {
	tr := &fakeTransport{}
	p := New(tr, "GOMI", 10)
	sess := &fakeSession{handle: "a"}
	require.NoError(t, p.Accept(sess))
	require.True(t, p.Requests.Insert("tok", sess))

	p.Clear()
	require.Equal(t, 0, p.Clients.Len())
	require.Equal(t, 0, p.Requests.Len())
}

func TestServiceDirectoryLearnServiceIDOnce(t *testing.T) {
	d := NewServiceDirectory("GOMI")
	require.True(t, d.LearnServiceID(7))
	require.False(t, d.LearnServiceID(9))
	id, ok := d.ServiceID()
	require.True(t, ok)
	require.Equal(t, int64(7), id)
}

func TestServiceDirectoryRefreshFullWhenUnmatched(t *testing.T) {
	d := NewServiceDirectory("GOMI")
	refresh := d.Refresh("unknown", 0, FilterServiceInfo|FilterServiceState)
	require.Len(t, refresh.Entries, 1)
	require.Equal(t, "GOMI", refresh.Entries[0].ServiceName)
	require.NotNil(t, refresh.Entries[0].Info)
	require.NotNil(t, refresh.Entries[0].State)
	require.True(t, refresh.Entries[0].State.AcceptingRequests)
}

func TestServiceDirectoryRefreshRespectsFilterMask(t *testing.T) {
	d := NewServiceDirectory("GOMI")
	refresh := d.Refresh("GOMI", 0, FilterServiceInfo)
	require.NotNil(t, refresh.Entries[0].Info)
	require.Nil(t, refresh.Entries[0].State)
}

func TestRequestRegistryPendingTokensSorted(t *testing.T) {
	r := NewRequestRegistry()
	sess := &fakeSession{handle: "a"}
	require.True(t, r.Insert("zeta", sess))
	require.True(t, r.Insert("alpha", sess))
	require.True(t, r.Insert("mu", sess))
	require.False(t, r.Insert("alpha", sess))
	require.Equal(t, int64(1), r.DuplicateCount())

	require.Equal(t, []string{"alpha", "mu", "zeta"}, r.PendingTokens())

	r.Erase("mu")
	require.Equal(t, []string{"alpha", "zeta"}, r.PendingTokens())
}

func TestRequestRegistryEraseAllFor(t *testing.T) {
	r := NewRequestRegistry()
	a := &fakeSession{handle: "a"}
	b := &fakeSession{handle: "b"}
	r.Insert("tok1", a)
	r.Insert("tok2", a)
	r.Insert("tok3", b)

	r.EraseAllFor("a")
	require.Equal(t, 1, r.Len())
	_, ok := r.Lookup("tok3")
	require.True(t, ok)
}
