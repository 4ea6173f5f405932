package democlient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/steve-o/gomi/internal/config"
	"github.com/steve-o/gomi/internal/orchestrator"
	"github.com/steve-o/gomi/internal/tickstore/memstore"
	"github.com/steve-o/gomi/internal/wire"
)

type recordingTransport struct {
	mu   sync.Mutex
	sent []string
}

func (t *recordingTransport) Send(handle string, status wire.Status, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, handle)
	return nil
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sent)
}

func fixtureOrchestrator(t *testing.T, transport *recordingTransport) *orchestrator.Orchestrator {
	t.Helper()
	cfg := &config.Config{}
	cfg.Service.Name = "GOMI-TEST"
	cfg.SessionCapacity = 10
	cfg.WorkerCount = 1
	cfg.DayCount = 5
	cfg.Transport.Codec = "none"
	cfg.Transport.QueueCap = 16
	cfg.COOL.HistoryTableSize = 16

	store := memstore.New()
	now := time.Now().Unix()
	store.PutTrade("IBM.N", now, 100.0, 10)

	orch, err := orchestrator.New(cfg, transport, store, nil)
	require.NoError(t, err)
	return orch
}

func TestDriverRunLogsInAndRequestsEverySymbol(t *testing.T) {
	transport := &recordingTransport{}
	orch := fixtureOrchestrator(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch.Start(ctx)
	defer orch.Shutdown()

	driver := &Driver{Orch: orch, Symbols: []string{"IBM.N"}}
	driver.Run(context.Background())

	require.Eventually(t, func() bool {
		return transport.count() >= 2 // login refresh + one item response
	}, time.Second, 10*time.Millisecond)
}

func TestDriverMintsDistinctHandlesAcrossRuns(t *testing.T) {
	transport := &recordingTransport{}
	orch := fixtureOrchestrator(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	orch.Start(ctx)
	defer orch.Shutdown()

	driver := &Driver{Orch: orch}
	require.NotPanics(t, func() {
		driver.Run(context.Background())
		driver.Run(context.Background())
	})
}
