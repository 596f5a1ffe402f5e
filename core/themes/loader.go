package themes

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/adalundhe/producticons/core/cache"
	"github.com/adalundhe/producticons/core/icontheme"
	"github.com/adalundhe/producticons/core/nls"
)

// ResourceLoader reads theme resources.
type ResourceLoader interface {
	ReadResource(ctx context.Context, location *url.URL) ([]byte, error)
}

// Loader reads and parses theme documents, reusing parsed documents for
// unchanged content when a document cache is configured.
type Loader struct {
	resources ResourceLoader
	localizer *nls.Localizer
	documents *cache.DocumentCache
	logger    *slog.Logger
}

type LoaderOption func(*Loader)

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithLocalizer(localizer *nls.Localizer) LoaderOption {
	return func(l *Loader) {
		if localizer != nil {
			l.localizer = localizer
		}
	}
}

func WithDocumentCache(documents *cache.DocumentCache) LoaderOption {
	return func(l *Loader) {
		l.documents = documents
	}
}

func NewLoader(resources ResourceLoader, opts ...LoaderOption) *Loader {
	l := &Loader{
		resources: resources,
		localizer: nls.Default(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDocument reads and parses the theme document at location.
func (l *Loader) LoadDocument(ctx context.Context, location *url.URL) (*icontheme.Document, []string, error) {
	content, err := l.resources.ReadResource(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("read product icon theme %s: %w", location, err)
	}

	var key string
	if l.documents != nil {
		key = cache.DocumentKey(location, content)
		if parsed, ok := l.documents.Get(key); ok {
			l.logger.Debug("product icon theme document reused", slog.String("location", location.String()))
			return parsed.Document, parsed.Warnings, nil
		}
	}

	doc, warnings, err := icontheme.ParseDocument(content, location, icontheme.WithLocalizer(l.localizer))
	if err != nil {
		return nil, nil, err
	}

	if l.documents != nil {
		l.documents.Add(key, cache.ParsedDocument{Document: doc, Warnings: warnings})
	}
	return doc, warnings, nil
}

func (l *Loader) reportWarnings(t *ThemeData, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	l.logger.Error(
		l.localizer.Sprintf(nls.ParseIconDefinitions, t.Location.String(), strings.Join(warnings, "\n")),
		slog.String("theme", t.ID),
		slog.Int("warnings", len(warnings)),
	)
}
