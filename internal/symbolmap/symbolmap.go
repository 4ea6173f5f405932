// Package symbolmap loads and hot-reloads the "symbol map" file named by
// config.Config.SymbolmapPath: a flat, whitespace-separated list of
// instrument identifiers, the same grammar original_source/src/gomi.cc's
// ReadSymbolMap/SplitStringAlongWhitespace parses. Where gomi.cc re-read
// that file on a SIGHUP-driven reload to rebuild its archive-publish
// stream set, this package instead watches it with fsnotify and swaps in
// the refreshed set without a restart — the idiomatic Go analogue of the
// same "reload without restart" behavior, grounded on
// teranos-QNTX/am/watcher.go's debounced fsnotify.Watcher loop.
package symbolmap

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/steve-o/gomi/internal/logging"
)

// debouncePeriod coalesces a burst of filesystem events, such as an
// editor's write-then-rename save, into a single reload.
const debouncePeriod = 250 * time.Millisecond

// Load reads path and splits it into a symbol list.
func Load(path string) ([]string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "symbolmap: read %q", path)
	}
	return strings.Fields(string(contents)), nil
}

func toSet(symbols []string) map[string]struct{} {
	set := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	return set
}

// Watcher holds the current symbol set loaded from a file and refreshes
// it on write/create events against the watched path.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  logging.Logger

	mu      sync.RWMutex
	symbols map[string]struct{}

	dmu      sync.Mutex
	debounce *time.Timer
}

// NewWatcher loads path's initial contents and arms an fsnotify watch on
// it. The returned Watcher does not watch for changes until Start runs.
func NewWatcher(path string, log logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop{}
	}
	symbols, err := Load(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "symbolmap: new fsnotify watcher")
	}
	if err := fsw.Add(path); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "symbolmap: watch %q", path)
	}

	return &Watcher{path: path, fsw: fsw, log: log, symbols: toSet(symbols)}, nil
}

// Start runs the watch loop until ctx is cancelled, at which point the
// underlying fsnotify watcher is closed.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.fsw.Close()
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error("symbolmap: watch error", "err", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.dmu.Lock()
	defer w.dmu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debouncePeriod, w.reload)
}

func (w *Watcher) reload() {
	symbols, err := Load(w.path)
	if err != nil {
		w.log.Error("symbolmap: reload failed", "path", w.path, "err", err)
		return
	}
	w.mu.Lock()
	w.symbols = toSet(symbols)
	w.mu.Unlock()
	w.log.Info("symbolmap: reloaded", "path", w.path, "count", len(symbols))
}

// Allowed reports whether symbol is present in the currently loaded set,
// satisfying session.SymbolAllowlist.
func (w *Watcher) Allowed(symbol string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.symbols[symbol]
	return ok
}

// Snapshot returns every symbol currently loaded, in no particular order.
func (w *Watcher) Snapshot() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]string, 0, len(w.symbols))
	for s := range w.symbols {
		out = append(out, s)
	}
	return out
}

// Close stops the underlying fsnotify watcher without waiting for ctx
// cancellation, for callers that construct a Watcher but never call Start.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
