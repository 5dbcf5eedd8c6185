package walk

import (
	"sort"
	"strings"
)

// DefaultExcluded lists the extensions that are never written to the output.
var DefaultExcluded = []string{
	"png", "jpg", "jpeg", "gif", "pdf", "zip",
	"gz", "exe", "bin", "mp3", "mp4", "avi",
}

// ExcludeSet is a case-insensitive set of file extensions without dots.
type ExcludeSet map[string]struct{}

// NewExcludeSet returns DefaultExcluded plus extra. Extra entries may carry a
// leading dot and any case.
func NewExcludeSet(extra ...string) ExcludeSet {
	s := make(ExcludeSet, len(DefaultExcluded)+len(extra))
	for _, ext := range DefaultExcluded {
		s[ext] = struct{}{}
	}
	for _, ext := range extra {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			s[ext] = struct{}{}
		}
	}
	return s
}

// Contains reports whether ext is excluded.
func (s ExcludeSet) Contains(ext string) bool {
	_, ok := s[strings.ToLower(ext)]
	return ok
}

// Sorted returns the extensions in lexical order.
func (s ExcludeSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
