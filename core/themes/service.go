package themes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/adalundhe/producticons/core/cache"
	"github.com/adalundhe/producticons/core/filesystem"
	"github.com/adalundhe/producticons/core/icontheme"
	"github.com/adalundhe/producticons/core/watcher"
)

var (
	ErrDuplicateTheme = errors.New("product icon theme already registered")
	ErrUnknownTheme   = errors.New("unknown product icon theme")
	ErrNothingToWatch = errors.New("no watchable product icon themes")
)

const defaultLoadConcurrency = 4

// ServiceConfig configures a Service. Only Loader is required.
type ServiceConfig struct {
	Loader   *Loader
	Registry icontheme.IconRegistry
	// Store persists the active theme. Nil disables persistence.
	Store StateStore
	// Icons caches resolutions of the active theme. Nil disables caching.
	Icons           *cache.IconCache
	Logger          *slog.Logger
	WatchConfig     watcher.WatchConfig
	LoadConcurrency int
	// Initial is the settings id RestoreActive activates when nothing is
	// persisted. Empty keeps the default theme.
	Initial string
}

// Service tracks the known themes and the active one.
type Service struct {
	loader   *Loader
	registry icontheme.IconRegistry
	store    StateStore
	icons    *cache.IconCache
	logger   *slog.Logger
	watchCfg watcher.WatchConfig
	limit    int
	initial  string

	mu        sync.RWMutex
	themes    map[string]*ThemeData
	order     []string
	active    *ThemeData
	listeners []func(*ThemeData)
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.LoadConcurrency
	if limit <= 0 {
		limit = defaultLoadConcurrency
	}
	return &Service{
		loader:   cfg.Loader,
		registry: cfg.Registry,
		store:    cfg.Store,
		icons:    cfg.Icons,
		logger:   logger,
		watchCfg: cfg.WatchConfig,
		limit:    limit,
		initial:  cfg.Initial,
		themes:   make(map[string]*ThemeData),
		active:   DefaultTheme(),
	}
}

// Register adds a theme, keyed by its settings id.
func (s *Service) Register(themes ...*ThemeData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, t := range themes {
		if t.SettingsID == DefaultSettingsID {
			errs = append(errs, fmt.Errorf("%w: %q is reserved", ErrDuplicateTheme, t.SettingsID))
			continue
		}
		if _, ok := s.themes[t.SettingsID]; ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateTheme, t.SettingsID))
			continue
		}
		s.themes[t.SettingsID] = t
		s.order = append(s.order, t.SettingsID)
	}
	return errors.Join(errs...)
}

// Theme looks a theme up by settings id. The default theme is always known.
func (s *Service) Theme(settingsID string) (*ThemeData, bool) {
	if settingsID == "" || settingsID == DefaultSettingsID {
		return DefaultTheme(), true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.themes[settingsID]
	return t, ok
}

// Themes returns the registered themes in registration order.
func (s *Service) Themes() []*ThemeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ThemeData, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.themes[id])
	}
	return out
}

// LoadAll loads every registered theme that is not loaded yet. Failures are
// logged and joined; they do not stop other themes from loading.
func (s *Service) LoadAll(ctx context.Context) error {
	themes := s.Themes()
	errs := make([]error, len(themes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, t := range themes {
		i, t := i, t
		g.Go(func() error {
			if _, err := t.EnsureLoaded(gctx, s.loader); err != nil {
				s.logger.Warn("product icon theme failed to load",
					slog.String("theme", t.SettingsID),
					slog.String("error", err.Error()))
				errs[i] = fmt.Errorf("%s: %w", t.SettingsID, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// SetActive loads and activates the theme with settingsID and persists it.
func (s *Service) SetActive(ctx context.Context, settingsID string) (*ThemeData, error) {
	t, ok := s.Theme(settingsID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, settingsID)
	}
	if _, err := t.EnsureLoaded(ctx, s.loader); err != nil {
		return nil, err
	}

	s.activate(t)

	if s.store != nil {
		if err := t.ToStorage(ctx, s.store); err != nil {
			return t, fmt.Errorf("persist active theme: %w", err)
		}
	}
	s.logger.Info("product icon theme activated",
		slog.String("theme", t.SettingsID),
		slog.Int("icons", t.Document().Len()))
	return t, nil
}

func (s *Service) activate(t *ThemeData) {
	s.mu.Lock()
	changed := s.active != t
	s.active = t
	listeners := s.listeners
	s.mu.Unlock()

	if changed {
		s.invalidateIcons()
		for _, fn := range listeners {
			fn(t)
		}
	}
}

// Active returns the active theme.
func (s *Service) Active() *ThemeData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// OnActiveChange registers fn to run after the active theme changes or is
// reloaded.
func (s *Service) OnActiveChange(fn func(*ThemeData)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// RestoreActive activates the persisted theme. A persisted theme that is
// registered is loaded fresh; otherwise the stored data is used as is so
// its style sheet is available until the theme is registered again. When
// nothing is persisted the Initial theme is activated, without persisting
// it.
func (s *Service) RestoreActive(ctx context.Context) (*ThemeData, error) {
	if s.store == nil {
		return s.activateInitial(ctx), nil
	}
	stored, err := FromStorage(ctx, s.store)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return s.activateInitial(ctx), nil
	}

	if t, ok := s.Theme(stored.SettingsID); ok {
		_, err := t.EnsureLoaded(ctx, s.loader)
		if err == nil {
			s.activate(t)
			return t, nil
		}
		s.logger.Warn("persisted product icon theme failed to load",
			slog.String("theme", stored.SettingsID),
			slog.String("error", err.Error()))
	}

	s.activate(stored)
	return stored, nil
}

func (s *Service) activateInitial(ctx context.Context) *ThemeData {
	if s.initial == "" {
		return s.Active()
	}
	t, ok := s.Theme(s.initial)
	if !ok {
		s.logger.Warn("configured product icon theme is not installed", slog.String("theme", s.initial))
		return s.Active()
	}
	if _, err := t.EnsureLoaded(ctx, s.loader); err != nil {
		s.logger.Warn("configured product icon theme failed to load",
			slog.String("theme", s.initial),
			slog.String("error", err.Error()))
		return s.Active()
	}
	s.activate(t)
	return t
}

// Reload reloads the theme with settingsID.
func (s *Service) Reload(ctx context.Context, settingsID string) error {
	t, ok := s.Theme(settingsID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, settingsID)
	}
	return s.reload(ctx, t)
}

func (s *Service) reload(ctx context.Context, t *ThemeData) error {
	if _, err := t.Reload(ctx, s.loader); err != nil {
		return err
	}

	s.mu.RLock()
	isActive := s.active == t
	listeners := s.listeners
	s.mu.RUnlock()

	if !isActive {
		return nil
	}
	s.invalidateIcons()
	if s.store != nil {
		if err := t.ToStorage(ctx, s.store); err != nil {
			s.logger.Warn("failed to persist reloaded theme", slog.String("error", err.Error()))
		}
	}
	for _, fn := range listeners {
		fn(t)
	}
	return nil
}

func (s *Service) invalidateIcons() {
	if s.icons != nil {
		s.icons.Clear()
	}
}

// Icon resolves id against the active theme. Ids unknown to the registry
// resolve only through the theme document.
func (s *Service) Icon(id string) (icontheme.IconDefinition, bool) {
	t := s.Active()

	var key string
	if s.icons != nil {
		key = cache.IconKey(t.ID, t.Generation(), id)
		if res, ok := s.icons.Get(key); ok {
			return res.Definition, res.Found
		}
	}

	c := icontheme.IconContribution{ID: id}
	if s.registry != nil {
		if registered, ok := s.registry.Icon(id); ok {
			c = registered
		}
	}
	def, found := t.Icon(c, s.registry)

	if s.icons != nil {
		s.icons.Set(key, cache.Resolution{Definition: def, Found: found})
	}
	return def, found
}

// Watch reloads watched themes whenever their files change, until ctx is
// done. Themes are watched if they have a file location and Watch is set.
func (s *Service) Watch(ctx context.Context) error {
	byPath := make(map[string][]*ThemeData)
	var paths []string
	for _, t := range s.Themes() {
		if !t.Watch || t.Location == nil {
			continue
		}
		p, err := filesystem.PathOf(t.Location)
		if err != nil {
			continue
		}
		if _, seen := byPath[p]; !seen {
			paths = append(paths, p)
		}
		byPath[p] = append(byPath[p], t)
	}
	if len(paths) == 0 {
		return ErrNothingToWatch
	}

	cfg := s.watchCfg
	cfg.Paths = paths
	w, err := watcher.NewFSWatcher(cfg)
	if err != nil {
		return err
	}
	defer w.Stop()

	events, err := w.Start(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("watching product icon themes", slog.Int("files", len(paths)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors():
			s.logger.Warn("theme watcher error", slog.String("error", err.Error()))
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Operation == watcher.OpDelete {
				continue
			}
			for _, t := range byPath[ev.Path] {
				if err := s.reload(ctx, t); err != nil {
					s.logger.Error("product icon theme reload failed",
						slog.String("theme", t.SettingsID),
						slog.String("error", err.Error()))
					continue
				}
				s.logger.Info("product icon theme reloaded", slog.String("theme", t.SettingsID))
			}
		}
	}
}

// Close releases the icon cache.
func (s *Service) Close() {
	if s.icons != nil {
		s.icons.Close()
	}
}
