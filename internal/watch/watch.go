package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/expenso-dev/expenso/internal/logger"
)

// Defaults for Watcher timing.
const (
	DefaultSettle = 300 * time.Millisecond
	DefaultTick   = 250 * time.Millisecond
)

// Handler processes one settled file. ctx carries a logger tagged with the
// file name. Errors are logged and do not stop the watcher.
type Handler func(ctx context.Context, path string) error

// Watcher calls Handle for each file created in Dir once it has stopped
// changing for Settle.
type Watcher struct {
	Dir    string
	Accept func(name string) bool // nil accepts every file
	Handle Handler
	Settle time.Duration
	Tick   time.Duration
	Log    *zerolog.Logger
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}

	log := logger.Or(w.Log)
	log.Info().Str("dir", w.Dir).Msg("watching for new files")

	tick := w.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	d := newDebouncer(w.Settle)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(ev.Name)
			if w.Accept != nil && !w.Accept(name) {
				continue
			}
			d.touch(ev.Name, time.Now())
		case <-ticker.C:
			for _, path := range d.ready(time.Now()) {
				fileLog := logger.WithFields(*log, map[string]any{"file": filepath.Base(path)})
				if err := w.Handle(logger.WithContext(ctx, fileLog), path); err != nil {
					fileLog.Error().Err(err).Msg("handling file")
				}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

// debouncer tracks the last event time per path.
type debouncer struct {
	settle  time.Duration
	pending map[string]time.Time
}

func newDebouncer(settle time.Duration) *debouncer {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &debouncer{settle: settle, pending: make(map[string]time.Time)}
}

func (d *debouncer) touch(path string, at time.Time) {
	d.pending[path] = at
}

// ready removes and returns, sorted, the paths quiet for longer than settle.
func (d *debouncer) ready(now time.Time) []string {
	var out []string
	for path, at := range d.pending {
		if now.Sub(at) > d.settle {
			out = append(out, path)
			delete(d.pending, path)
		}
	}
	sort.Strings(out)
	return out
}
