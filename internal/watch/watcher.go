// Package watch rebuilds the output whenever the content directory changes.
package watch

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/footnotelinker/internal/foundation/errors"
	"git.home.luguber.info/inful/footnotelinker/internal/logfields"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one build.
type RebuildFunc func(ctx context.Context) error

// FingerprintFunc returns a hash of the current content set. A rebuild is
// skipped when the hash matches the one of the last successful build.
type FingerprintFunc func() (string, error)

// Options configures a Watcher.
type Options struct {
	Debounce    time.Duration
	Interval    time.Duration // Periodic rebuild interval; zero disables it
	Extensions  []string      // File extensions that trigger rebuilds; empty means all
	Fingerprint FingerprintFunc

	// MetricsAddr and MetricsHandler enable the metrics endpoint while watching.
	MetricsAddr    string
	MetricsHandler http.Handler

	Logger *slog.Logger
}

// Watcher runs the initial build, then rebuilds on filesystem events and on
// a fixed interval. Rebuilds never overlap; requests that arrive while a
// build is running collapse into a single follow-up build.
type Watcher struct {
	root    string
	rebuild RebuildFunc
	opts    Options
	logger  *slog.Logger

	requests chan struct{}

	mu    sync.Mutex
	timer *time.Timer

	lastHash string
}

// New creates a Watcher for the content directory root.
func New(root string, rebuild RebuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := make([]string, 0, len(opts.Extensions))
	for _, e := range opts.Extensions {
		exts = append(exts, strings.ToLower(e))
	}
	opts.Extensions = exts
	return &Watcher{
		root:     root,
		rebuild:  rebuild,
		opts:     opts,
		logger:   logger,
		requests: make(chan struct{}, 1),
	}
}

// Run blocks until ctx is canceled. It returns an error only when watching
// cannot start.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.root)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve content directory").
			WithContext("path", w.root).
			Build()
	}
	if fi, statErr := os.Stat(abs); statErr != nil || !fi.IsDir() {
		return errors.NewError(errors.CategoryNotFound, "content directory not found").
			WithCause(statErr).
			WithContext("path", abs).
			Build()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create filesystem watcher").Build()
	}
	defer func() { _ = fsw.Close() }()
	w.addDirsRecursive(fsw, abs)

	var srv *metricsServer
	if w.opts.MetricsAddr != "" && w.opts.MetricsHandler != nil {
		srv, err = startMetricsServer(w.opts.MetricsAddr, w.opts.MetricsHandler, w.logger)
		if err != nil {
			return err
		}
	}

	var sched *scheduler
	if w.opts.Interval > 0 {
		sched, err = newScheduler(w.opts.Interval, w.request, w.logger)
		if err != nil {
			srv.stop()
			return err
		}
		sched.start()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()

	w.logger.Info("Watching for changes", logfields.Path(abs))
	w.request()
	w.loop(ctx, fsw)

	w.stopTimer()
	if sched != nil {
		sched.stop()
	}
	srv.stop()
	wg.Wait()
	w.logger.Info("Watch stopped")
	return nil
}

// Trigger schedules a rebuild after the debounce delay. Calls within the
// delay restart it.
func (w *Watcher) Trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.opts.Debounce, w.request)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// request queues a rebuild unless one is already queued.
func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			if ctx.Err() != nil {
				return
			}
			w.rebuildOnce(ctx)
		}
	}
}

func (w *Watcher) rebuildOnce(ctx context.Context) {
	var hash string
	if w.opts.Fingerprint != nil {
		h, err := w.opts.Fingerprint()
		if err != nil {
			w.logger.Warn("Content fingerprint failed", logfields.Error(err))
		} else if h == w.lastHash {
			w.logger.Debug("Content unchanged; skipping rebuild")
			return
		}
		hash = h
	}

	start := time.Now()
	if err := w.rebuild(ctx); err != nil {
		w.logger.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	if hash != "" {
		w.lastHash = hash
	}
	w.logger.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, ev fsnotify.Event) {
	if shouldIgnore(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addDirsRecursive(fsw, ev.Name)
			w.Trigger()
			return
		}
	}
	if !w.relevant(ev.Name) {
		return
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	w.Trigger()
}

// relevant reports whether a change to name can affect the output. Names
// without an extension may be removed directories and always count.
func (w *Watcher) relevant(name string) bool {
	if len(w.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == "" || slices.Contains(w.opts.Extensions, ext)
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(p); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(p), logfields.Error(err))
		}
		return nil
	})
}

// shouldIgnore reports hidden files, editor swap files and OS clutter.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db", base == "4913":
		return true
	}
	return false
}
