// Package filesystem reads theme resources from disk inside a set of allowed
// roots.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrPathTraversal     = errors.New("path traversal detected")
	ErrSymlinkNotAllowed = errors.New("symlink target outside boundary")
	ErrOutsideBoundary   = errors.New("path outside allowed boundary")
	ErrOperationDenied   = errors.New("operation denied by policy")
	ErrUnsupportedScheme = errors.New("unsupported resource scheme")
	ErrTooLarge          = errors.New("resource exceeds size limit")
)

type OperationType string

const (
	OpRead OperationType = "read"
)

type AuditEntry struct {
	Timestamp    time.Time
	Operation    OperationType
	Path         string
	ResolvedPath string
	Success      bool
	Error        string
}

type AuditLogger interface {
	Log(entry AuditEntry)
}

type NoOpAuditLogger struct{}

func (n *NoOpAuditLogger) Log(_ AuditEntry) {}

// SlogAuditLogger writes audit entries at debug level, failures at warn.
type SlogAuditLogger struct {
	Logger *slog.Logger
}

func (l *SlogAuditLogger) Log(entry AuditEntry) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"op", string(entry.Operation),
		"path", entry.Path,
		"resolved", entry.ResolvedPath,
	}
	if entry.Success {
		logger.Debug("resource access", attrs...)
		return
	}
	logger.Warn("resource access denied", append(attrs, "error", entry.Error)...)
}

type LoaderConfig struct {
	// AllowedRoots restricts reads to these directories. Empty allows any
	// path.
	AllowedRoots  []string
	AllowSymlinks bool
	AllowHidden   bool
	MaxFileSize   int64
	AuditLogger   AuditLogger
}

func DefaultLoaderConfig(roots ...string) LoaderConfig {
	return LoaderConfig{
		AllowedRoots:  roots,
		AllowSymlinks: false,
		AllowHidden:   false,
		MaxFileSize:   10 * 1024 * 1024,
		AuditLogger:   &NoOpAuditLogger{},
	}
}

// Loader reads file: resources for theme loading.
type Loader struct {
	config        LoaderConfig
	resolvedRoots []string
}

func NewLoader(config LoaderConfig) (*Loader, error) {
	resolved, err := resolveRoots(config.AllowedRoots)
	if err != nil {
		return nil, err
	}

	return &Loader{
		config:        config,
		resolvedRoots: resolved,
	}, nil
}

func resolveRoots(roots []string) ([]string, error) {
	resolved := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		abs = filepath.Clean(abs)
		resolved = append(resolved, abs)
		if real, err := filepath.EvalSymlinks(abs); err == nil && real != abs {
			resolved = append(resolved, real)
		}
	}
	return resolved, nil
}

// FileURL converts a filesystem path into an absolute file: URL.
func FileURL(path string) (*url.URL, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

// PathOf returns the filesystem path of a file: URL.
func PathOf(location *url.URL) (string, error) {
	if location == nil || location.Scheme != "file" {
		return "", ErrUnsupportedScheme
	}
	if location.Host != "" && location.Host != "localhost" {
		return "", fmt.Errorf("%w: remote host %q", ErrUnsupportedScheme, location.Host)
	}
	return filepath.FromSlash(location.Path), nil
}

// ReadResource returns the content at location.
func (l *Loader) ReadResource(ctx context.Context, location *url.URL) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := PathOf(location)
	if err != nil {
		if location != nil {
			l.audit(OpRead, location.String(), "", false, err.Error())
		}
		return nil, err
	}
	return l.Read(path)
}

func (l *Loader) validatePath(path string) (string, error) {
	resolved, err := l.resolvePath(path)
	if err != nil {
		l.audit(OpRead, path, "", false, err.Error())
		return "", err
	}

	for _, check := range []func(string) error{l.checkBoundary, l.checkSymlink, l.checkHidden} {
		if err := check(resolved); err != nil {
			l.audit(OpRead, path, resolved, false, err.Error())
			return "", err
		}
	}

	return resolved, nil
}

func (l *Loader) resolvePath(path string) (string, error) {
	if containsTraversal(path) {
		return "", ErrPathTraversal
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.Clean(abs), nil
}

func containsTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func (l *Loader) checkBoundary(resolved string) error {
	if len(l.resolvedRoots) == 0 {
		return nil
	}
	for _, root := range l.resolvedRoots {
		if isWithinRoot(resolved, root) {
			return nil
		}
	}
	return ErrOutsideBoundary
}

func isWithinRoot(path, root string) bool {
	return strings.HasPrefix(path, root+string(filepath.Separator)) || path == root
}

// checkSymlink resolves every component of path. A path that leads through
// a symlink, in any component, must still end up inside the allowed roots.
func (l *Loader) checkSymlink(path string) error {
	if l.config.AllowSymlinks {
		return nil
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if target == path {
		return nil
	}
	if err := l.checkBoundary(target); err != nil {
		return ErrSymlinkNotAllowed
	}
	return nil
}

func (l *Loader) checkHidden(path string) error {
	if l.config.AllowHidden {
		return nil
	}

	if strings.HasPrefix(filepath.Base(path), ".") {
		return ErrOperationDenied
	}

	return nil
}

func (l *Loader) Read(path string) ([]byte, error) {
	resolved, err := l.validatePath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(resolved)
	if err != nil {
		l.audit(OpRead, path, resolved, false, err.Error())
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if l.config.MaxFileSize > 0 {
		r = io.LimitReader(f, l.config.MaxFileSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		l.audit(OpRead, path, resolved, false, err.Error())
		return nil, err
	}
	if l.config.MaxFileSize > 0 && int64(len(data)) > l.config.MaxFileSize {
		l.audit(OpRead, path, resolved, false, ErrTooLarge.Error())
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}

	l.audit(OpRead, path, resolved, true, "")
	return data, nil
}

func (l *Loader) audit(op OperationType, path, resolved string, success bool, errMsg string) {
	logger := l.config.AuditLogger
	if logger == nil {
		return
	}

	logger.Log(AuditEntry{
		Timestamp:    time.Now(),
		Operation:    op,
		Path:         path,
		ResolvedPath: resolved,
		Success:      success,
		Error:        errMsg,
	})
}
