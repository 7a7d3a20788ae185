// Package pathfilter selects rule files with doublestar include and exclude
// patterns. Patterns and returned paths use forward slashes and are
// relative to the searched directory.
package pathfilter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude matches rule files under ./rules
var DefaultInclude = []string{"rules/**/*.hcl"}

// Filter holds the include and exclude patterns
type Filter struct {
	include []string
	exclude []string
}

// New creates a Filter. Patterns are validated up front so a typo in the
// config file is reported before any directory is read.
func New(include, exclude []string) (*Filter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Default returns a filter with DefaultInclude and no excludes
func Default() *Filter {
	return &Filter{include: DefaultInclude}
}

// Files returns the regular files in dir matching an include pattern and
// no exclude pattern, sorted and deduplicated.
func (f *Filter) Files(dir string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range f.include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || f.excluded(m) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}

// FilesAbs is Files with each path joined to the absolute form of dir
func (f *Filter) FilesAbs(dir string) ([]string, error) {
	rel, err := f.Files(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	for i, p := range rel {
		rel[i] = filepath.Join(abs, filepath.FromSlash(p))
	}
	return rel, nil
}

// Match reports whether a relative path is selected by the filter
func (f *Filter) Match(path string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range f.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return !f.excluded(path)
		}
	}
	return false
}

func (f *Filter) excluded(path string) bool {
	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}
