package filesystem

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) Log(entry AuditEntry) {
	r.entries = append(r.entries, entry)
}

func newTestLoader(t *testing.T, roots ...string) (*Loader, *recordingAudit) {
	t.Helper()
	audit := &recordingAudit{}
	cfg := DefaultLoaderConfig(roots...)
	cfg.AuditLogger = audit
	loader, err := NewLoader(cfg)
	require.NoError(t, err)
	return loader, audit
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestReadResource(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "theme.json")
	writeFile(t, path, `{"fonts": []}`)

	loader, audit := newTestLoader(t, root)
	location, err := FileURL(path)
	require.NoError(t, err)

	data, err := loader.ReadResource(context.Background(), location)
	require.NoError(t, err)
	assert.Equal(t, `{"fonts": []}`, string(data))

	require.Len(t, audit.entries, 1)
	assert.True(t, audit.entries[0].Success)
	assert.Equal(t, OpRead, audit.entries[0].Operation)
}

func TestReadResource_UnsupportedScheme(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.ReadResource(context.Background(), &url.URL{Scheme: "https", Host: "example.com", Path: "/t.json"})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = loader.ReadResource(context.Background(), &url.URL{Scheme: "file", Host: "remote", Path: "/t.json"})
	assert.ErrorIs(t, err, ErrUnsupportedScheme)

	_, err = loader.ReadResource(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestReadResource_CanceledContext(t *testing.T) {
	loader, _ := newTestLoader(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.ReadResource(ctx, &url.URL{Scheme: "file", Path: "/x"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRead_OutsideBoundary(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	path := filepath.Join(other, "theme.json")
	writeFile(t, path, "{}")

	loader, audit := newTestLoader(t, root)

	_, err := loader.Read(path)
	assert.ErrorIs(t, err, ErrOutsideBoundary)
	require.NotEmpty(t, audit.entries)
	assert.False(t, audit.entries[len(audit.entries)-1].Success)
}

func TestRead_NoRootsAllowsAnyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	writeFile(t, path, "{}")

	loader, _ := newTestLoader(t)
	data, err := loader.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestRead_Traversal(t *testing.T) {
	root := t.TempDir()
	loader, _ := newTestLoader(t, root)

	_, err := loader.Read(root + "/sub/../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestRead_Hidden(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".secret.json")
	writeFile(t, path, "{}")

	loader, _ := newTestLoader(t, root)
	_, err := loader.Read(path)
	assert.ErrorIs(t, err, ErrOperationDenied)

	cfg := DefaultLoaderConfig(root)
	cfg.AllowHidden = true
	permissive, err := NewLoader(cfg)
	require.NoError(t, err)
	_, err = permissive.Read(path)
	assert.NoError(t, err)
}

func TestRead_HiddenDirectoryAllowed(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ".producticons", "themes", "theme.json")
	writeFile(t, path, "{}")

	loader, _ := newTestLoader(t, root)
	_, err := loader.Read(path)
	assert.NoError(t, err)
}

func TestRead_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	other := t.TempDir()
	outside := filepath.Join(other, "outside.json")
	inside := filepath.Join(root, "inside.json")
	writeFile(t, outside, "{}")
	writeFile(t, inside, "{}")

	escaping := filepath.Join(root, "escape.json")
	contained := filepath.Join(root, "contained.json")
	require.NoError(t, os.Symlink(outside, escaping))
	require.NoError(t, os.Symlink(inside, contained))

	loader, _ := newTestLoader(t, root)

	_, err := loader.Read(escaping)
	assert.ErrorIs(t, err, ErrSymlinkNotAllowed)

	_, err = loader.Read(contained)
	assert.NoError(t, err)
}

func TestRead_SymlinkedDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "themes", "theme.json"), "{}")
	writeFile(t, filepath.Join(root, "real", "theme.json"), "{}")

	require.NoError(t, os.Symlink(filepath.Join(other, "themes"), filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))

	loader, audit := newTestLoader(t, root)

	_, err := loader.Read(filepath.Join(root, "linked", "theme.json"))
	assert.ErrorIs(t, err, ErrSymlinkNotAllowed)
	require.NotEmpty(t, audit.entries)
	assert.False(t, audit.entries[len(audit.entries)-1].Success)

	_, err = loader.Read(filepath.Join(root, "alias", "theme.json"))
	assert.NoError(t, err)
}

func TestRead_SymlinksAllowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on Windows")
	}

	root := t.TempDir()
	other := t.TempDir()
	writeFile(t, filepath.Join(other, "theme.json"), "{}")
	require.NoError(t, os.Symlink(other, filepath.Join(root, "linked")))

	cfg := DefaultLoaderConfig(root)
	cfg.AllowSymlinks = true
	loader, err := NewLoader(cfg)
	require.NoError(t, err)

	_, err = loader.Read(filepath.Join(root, "linked", "theme.json"))
	assert.NoError(t, err)
}

func TestRead_TooLarge(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "big.json")
	writeFile(t, path, strings.Repeat("x", 64))

	cfg := DefaultLoaderConfig(root)
	cfg.MaxFileSize = 32
	loader, err := NewLoader(cfg)
	require.NoError(t, err)

	_, err = loader.Read(path)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestRead_Missing(t *testing.T) {
	root := t.TempDir()
	loader, _ := newTestLoader(t, root)

	_, err := loader.Read(filepath.Join(root, "missing.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileURLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a b", "theme.json")
	location, err := FileURL(path)
	require.NoError(t, err)
	assert.Equal(t, "file", location.Scheme)

	back, err := PathOf(location)
	require.NoError(t, err)
	assert.Equal(t, path, back)
}

func TestSlogAuditLogger(t *testing.T) {
	// Nil logger falls back to the default logger.
	(&SlogAuditLogger{}).Log(AuditEntry{Operation: OpRead, Path: "/x", Success: true})
	(&SlogAuditLogger{}).Log(AuditEntry{Operation: OpRead, Path: "/x", Error: "denied"})
}
