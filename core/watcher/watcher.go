// Package watcher reports changes to theme files. It wraps fsnotify with
// per-path debouncing and glob filtering.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultDebounce is the default debounce interval for file events.
const DefaultDebounce = 100 * time.Millisecond

const eventBuffer = 64

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoPathsConfigured indicates no watch paths were specified.
	ErrNoPathsConfigured = errors.New("no paths configured for watching")

	// ErrPathNotExist indicates a watch path does not exist.
	ErrPathNotExist = errors.New("watch path does not exist")

	// ErrInvalidPattern indicates an include or exclude pattern could not be
	// compiled.
	ErrInvalidPattern = errors.New("invalid watch pattern")

	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("watcher already started")
)

// =============================================================================
// FileOperation
// =============================================================================

// FileOperation represents the type of file operation detected.
type FileOperation int

const (
	OpCreate FileOperation = iota
	OpModify
	OpDelete
	OpRename
)

func (op FileOperation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// FileEvent is a debounced change to one path.
type FileEvent struct {
	Path      string
	Operation FileOperation
	Time      time.Time
}

// =============================================================================
// WatchConfig
// =============================================================================

// WatchConfig configures the file system watcher.
type WatchConfig struct {
	// Paths are files or directories to watch. A file is watched through its
	// parent directory so editors that replace files on save are still seen.
	// Directories are watched recursively.
	Paths []string

	// IncludePatterns restrict events to matching paths. Empty includes
	// everything.
	IncludePatterns []string

	// ExcludePatterns are glob patterns for paths to ignore.
	ExcludePatterns []string

	// Debounce is the interval to wait before emitting events for the same path.
	Debounce time.Duration
}

// DefaultWatchConfig returns a configuration with sensible defaults.
func DefaultWatchConfig(paths ...string) WatchConfig {
	return WatchConfig{
		Paths:           paths,
		IncludePatterns: []string{"*.json", "*.woff", "*.woff2", "*.ttf", "*.otf"},
		ExcludePatterns: []string{".*", "*~", "*.swp"},
		Debounce:        DefaultDebounce,
	}
}

type pendingEvent struct {
	event *FileEvent
	timer *time.Timer
}

// =============================================================================
// FSWatcher
// =============================================================================

// FSWatcher monitors file system changes using fsnotify.
type FSWatcher struct {
	config   WatchConfig
	watcher  *fsnotify.Watcher
	includes []glob.Glob
	excludes []glob.Glob
	files    map[string]struct{}

	mu       sync.Mutex
	pending  map[string]*pendingEvent
	eventCh  chan *FileEvent
	errCh    chan error
	started  bool
	stopOnce sync.Once
	stopped  bool
}

// NewFSWatcher creates a new file system watcher.
func NewFSWatcher(config WatchConfig) (*FSWatcher, error) {
	if len(config.Paths) == 0 {
		return nil, ErrNoPathsConfigured
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}

	config.Paths = append([]string(nil), config.Paths...)
	files := make(map[string]struct{})
	for i, path := range config.Paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrPathNotExist
			}
			return nil, err
		}
		if !info.IsDir() {
			files[abs] = struct{}{}
		}
		config.Paths[i] = abs
	}

	includes, err := compilePatterns(config.IncludePatterns)
	if err != nil {
		return nil, err
	}
	excludes, err := compilePatterns(config.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FSWatcher{
		config:   config,
		watcher:  watcher,
		includes: includes,
		excludes: excludes,
		files:    files,
		pending:  make(map[string]*pendingEvent),
	}, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Join(ErrInvalidPattern, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

// =============================================================================
// Start
// =============================================================================

// Start begins watching. The returned channel is closed when ctx is done or
// Stop is called.
func (w *FSWatcher) Start(ctx context.Context) (<-chan *FileEvent, error) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	w.started = true
	w.eventCh = make(chan *FileEvent, eventBuffer)
	w.errCh = make(chan error, 1)
	w.mu.Unlock()

	if err := w.addWatchPaths(); err != nil {
		w.Stop()
		close(w.eventCh)
		return nil, err
	}

	go w.processEvents(ctx)

	return w.eventCh, nil
}

// Errors reports errors from the underlying watcher. Only the most recent
// unread error is kept.
func (w *FSWatcher) Errors() <-chan error {
	return w.errCh
}

func (w *FSWatcher) addWatchPaths() error {
	for _, path := range w.config.Paths {
		if _, ok := w.files[path]; ok {
			if err := w.watcher.Add(filepath.Dir(path)); err != nil {
				return err
			}
			continue
		}
		if err := w.addDirectoryRecursive(path); err != nil {
			return err
		}
	}
	return nil
}

func (w *FSWatcher) addDirectoryRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.isExcluded(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// =============================================================================
// Event Processing
// =============================================================================

func (w *FSWatcher) processEvents(ctx context.Context) {
	defer w.cleanup()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *FSWatcher) reportError(err error) {
	select {
	case w.errCh <- err:
	default:
		select {
		case <-w.errCh:
		default:
		}
		select {
		case w.errCh <- err:
		default:
		}
	}
}

func (w *FSWatcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		w.handlePossibleNewDirectory(event.Name)
	}

	if !w.isRelevant(event.Name) {
		return
	}

	w.scheduleEvent(event.Name, mapFSNotifyOperation(event.Op))
}

func (w *FSWatcher) handlePossibleNewDirectory(path string) {
	if _, watchingFile := w.files[path]; watchingFile {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if w.underWatchedDirectory(path) && !w.isExcluded(path) {
		_ = w.addDirectoryRecursive(path)
	}
}

func (w *FSWatcher) underWatchedDirectory(path string) bool {
	for _, root := range w.config.Paths {
		if _, ok := w.files[root]; ok {
			continue
		}
		if rel, err := filepath.Rel(root, path); err == nil && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel) {
			return true
		}
	}
	return false
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}

// isRelevant reports whether an event for path should be emitted: explicitly
// watched files always are, other paths must sit under a watched directory,
// match an include pattern and no exclude pattern.
func (w *FSWatcher) isRelevant(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	if !w.underWatchedDirectory(path) {
		return false
	}
	if w.isExcluded(path) {
		return false
	}
	if len(w.includes) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pattern := range w.includes {
		if pattern.Match(base) || pattern.Match(filepath.ToSlash(path)) {
			return true
		}
	}
	return false
}

var fsOpMappings = []struct {
	fsOp   fsnotify.Op
	fileOp FileOperation
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpModify},
	{fsnotify.Remove, OpDelete},
	{fsnotify.Rename, OpRename},
	{fsnotify.Chmod, OpModify},
}

func mapFSNotifyOperation(op fsnotify.Op) FileOperation {
	for _, m := range fsOpMappings {
		if op.Has(m.fsOp) {
			return m.fileOp
		}
	}
	return OpModify
}

// =============================================================================
// Debouncing
// =============================================================================

func (w *FSWatcher) scheduleEvent(path string, op FileOperation) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}

	event := &FileEvent{Path: path, Operation: op, Time: time.Now()}

	if existing, ok := w.pending[path]; ok {
		existing.timer.Stop()
		existing.event = event
		existing.timer = w.createDebounceTimer(path, event)
		return
	}

	w.pending[path] = &pendingEvent{
		event: event,
		timer: w.createDebounceTimer(path, event),
	}
}

func (w *FSWatcher) createDebounceTimer(path string, event *FileEvent) *time.Timer {
	return time.AfterFunc(w.config.Debounce, func() {
		w.emitEvent(path, event)
	})
}

func (w *FSWatcher) emitEvent(path string, event *FileEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if p, ok := w.pending[path]; !ok || p.event != event {
		return
	}

	delete(w.pending, path)

	select {
	case w.eventCh <- event:
	default:
		// Buffer full; the consumer is behind and will reload anyway.
	}
}

// =============================================================================
// Exclusion
// =============================================================================

func (w *FSWatcher) isExcluded(path string) bool {
	for _, pattern := range w.excludes {
		if matchesPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchesPattern checks the full path, the base name, and every path suffix.
func matchesPattern(path string, pattern glob.Glob) bool {
	slashed := filepath.ToSlash(path)
	if pattern.Match(slashed) || pattern.Match(filepath.Base(path)) {
		return true
	}
	parts := splitPath(slashed)
	for i := range parts {
		if pattern.Match(joinSlash(parts[i:])) {
			return true
		}
	}
	return false
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				parts = append(parts, path[start:i])
			}
			start = i + 1
		}
	}
	return parts
}

func joinSlash(parts []string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '/')
		}
		b = append(b, p...)
	}
	return string(b)
}

// =============================================================================
// Stop
// =============================================================================

// Stop stops the watcher. Safe to call multiple times.
func (w *FSWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		for _, p := range w.pending {
			p.timer.Stop()
		}
		w.pending = make(map[string]*pendingEvent)
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}

func (w *FSWatcher) cleanup() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		for _, p := range w.pending {
			p.timer.Stop()
		}
		w.pending = make(map[string]*pendingEvent)
	}
	close(w.eventCh)
	w.mu.Unlock()

	_ = w.Stop()
}
