package themes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adalundhe/producticons/core/filesystem"
)

// Discover builds unloaded themes for paths. A file is one theme; a
// directory contributes every *.json file directly inside it. The theme id
// is the file name without extension.
func Discover(paths []string, watch bool) ([]*ThemeData, error) {
	var (
		found []*ThemeData
		errs  []error
	)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.IsDir() {
			t, err := FromFile(p, watch)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			found = append(found, t)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			t, err := FromFile(m, watch)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			found = append(found, t)
		}
	}
	return found, errors.Join(errs...)
}

// FromFile creates an unloaded theme for a theme document on disk.
func FromFile(path string, watch bool) (*ThemeData, error) {
	location, err := filesystem.FileURL(path)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))
	return FromExtensionTheme(ExtensionPoint{ID: id, Path: path, Watch: watch}, location, nil), nil
}
