package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steve-o/gomi/internal/config"
	"github.com/steve-o/gomi/internal/tickstore/memstore"
	"github.com/steve-o/gomi/internal/wire"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent []string
}

func (t *fakeTransport) Send(handle string, status wire.Status, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, handle)
	return nil
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Service.Name = "GOMI-TEST"
	cfg.SessionCapacity = 10
	cfg.WorkerCount = 2
	cfg.DayCount = 5
	cfg.Transport.Codec = "none"
	cfg.Transport.QueueCap = 16
	cfg.COOL.HistoryTableSize = 16
	cfg.COOL.Names = []string{"USER1"}
	return cfg
}

func fixtureAdapter() *memstore.Store {
	store := memstore.New()
	now := time.Now().Unix()
	for i := int64(9); i >= 0; i-- {
		store.PutTrade("IBM.N", now-i*86400, 100+float64(i), 10+uint64(i))
	}
	return store
}

func TestNewWiresComponentsAndPreRegistersCool(t *testing.T) {
	transport := &fakeTransport{}
	orch, err := New(testConfig(), transport, fixtureAdapter(), nil)
	require.NoError(t, err)

	_, ok := orch.Cool.Lookup("USER1")
	require.True(t, ok)
}

func TestAcceptSessionRegistersAndRejectsAtCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.SessionCapacity = 1
	orch, err := New(cfg, &fakeTransport{}, fixtureAdapter(), nil)
	require.NoError(t, err)

	_, err = orch.AcceptSession("h1", "127.0.0.1:1")
	require.NoError(t, err)

	_, err = orch.AcceptSession("h2", "127.0.0.1:2")
	require.Error(t, err)
}

func TestDispatchToUnknownHandleIsNoop(t *testing.T) {
	orch, err := New(testConfig(), &fakeTransport{}, fixtureAdapter(), nil)
	require.NoError(t, err)

	require.NotPanics(t, func() {
		orch.Dispatch(context.Background(), "ghost", wire.Event{Model: wire.ModelLogin})
	})
}

func TestInactiveSessionRemovesFromOrchestrator(t *testing.T) {
	orch, err := New(testConfig(), &fakeTransport{}, fixtureAdapter(), nil)
	require.NoError(t, err)

	_, err = orch.AcceptSession("h1", "127.0.0.1:1")
	require.NoError(t, err)

	orch.InactiveSession("h1")
	_, ok := orch.lookup("h1")
	require.False(t, ok)
}

func TestStartAndShutdownJoinsWorkers(t *testing.T) {
	orch, err := New(testConfig(), &fakeTransport{}, fixtureAdapter(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch.Start(ctx)

	done := make(chan struct{})
	go func() {
		orch.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}

func TestNewLeavesSymbolsNilWithoutSymbolmapPath(t *testing.T) {
	orch, err := New(testConfig(), &fakeTransport{}, fixtureAdapter(), nil)
	require.NoError(t, err)
	require.Nil(t, orch.Symbols)
}

func TestSymbolmapWatcherGatesItemRequests(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "symbolmap")
	require.NoError(t, os.WriteFile(path, []byte("IBM.N"), 0o644))

	cfg := testConfig()
	cfg.SymbolmapPath = path
	transport := &fakeTransport{}
	orch, err := New(cfg, transport, fixtureAdapter(), nil)
	require.NoError(t, err)
	require.NotNil(t, orch.Symbols)
	require.True(t, orch.Symbols.Allowed("IBM.N"))
	require.False(t, orch.Symbols.Allowed("AAPL.O"))
}

func TestResolveSeedFallsBackToFullDayWindow(t *testing.T) {
	cfg := testConfig()
	decl, err := resolveSeed(cfg, time.UTC)
	require.NoError(t, err)
	require.Equal(t, defaultSeedName, decl.Name)
	require.Equal(t, 0, int(decl.StartTime))
}
