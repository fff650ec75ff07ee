package ingest

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter selects files by extension and doublestar include/exclude globs. Globs are
// matched against the slash-separated path relative to the import root; globs without
// a slash also match the base name. Exclusion wins over inclusion.
type Filter struct {
	Extensions []string
	Include    []string
	Exclude    []string
}

// Validate reports the first malformed glob.
func (f *Filter) Validate() error {
	for _, p := range append(append([]string{}, f.Include...), f.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// Match reports whether the file at rel (relative to the import root) passes the filter.
func (f *Filter) Match(rel string) bool {
	if f == nil {
		return true
	}
	if !MatchExtension(rel, f.Extensions) {
		return false
	}
	rel = filepath.ToSlash(rel)
	if matchAny(f.Exclude, rel) {
		return false
	}
	return len(f.Include) == 0 || matchAny(f.Include, rel)
}

// ExcludesDir reports whether a directory is excluded outright, so its subtree can be skipped.
func (f *Filter) ExcludesDir(rel string) bool {
	if f == nil || rel == "." {
		return false
	}
	return matchAny(f.Exclude, filepath.ToSlash(rel))
}

func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}
