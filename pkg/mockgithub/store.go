// Package mockgithub is a small in-process stand-in for the parts of the
// GitHub REST API that repocat reads: repository metadata, the contents API
// and raw file downloads. It backs integration tests and apps/mock-github.
package mockgithub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Store holds repositories keyed by "owner/repo". Files keep the order in
// which they were added so listings are deterministic but not alphabetical.
type Store struct {
	mu       sync.RWMutex
	repos    map[string]*repository
	failures map[string]int // "owner/repo@branch/path" -> HTTP status
	requests []string

	omitDownloadURL bool
}

type repository struct {
	defaultBranch string
	branches      map[string]*tree
}

type tree struct {
	order []string
	files map[string][]byte
}

type entry struct {
	name  string
	path  string
	isDir bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		repos:    make(map[string]*repository),
		failures: make(map[string]int),
	}
}

// AddRepo registers owner/repo with the given default branch.
func (s *Store) AddRepo(owner, repo, defaultBranch string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.repoLocked(owner, repo)
	r.defaultBranch = defaultBranch
}

// SetFile stores content at path on branch, creating repo and branch as needed.
func (s *Store) SetFile(owner, repo, branch, path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.repoLocked(owner, repo)
	t := r.branches[branch]
	if t == nil {
		t = &tree{files: make(map[string][]byte)}
		r.branches[branch] = t
	}
	if _, ok := t.files[path]; !ok {
		t.order = append(t.order, path)
	}
	t.files[path] = content
}

// Fail makes the contents API answer status for path on branch.
func (s *Store) Fail(owner, repo, branch, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[fmt.Sprintf("%s/%s@%s/%s", owner, repo, branch, path)] = status
}

// OmitDownloadURL controls whether listed files carry a download_url.
func (s *Store) OmitDownloadURL(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitDownloadURL = omit
}

// Requests returns every request URI served so far, in order.
func (s *Store) Requests() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Store) record(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, uri)
}

func (s *Store) repoLocked(owner, repo string) *repository {
	key := owner + "/" + repo
	r := s.repos[key]
	if r == nil {
		r = &repository{defaultBranch: "main", branches: make(map[string]*tree)}
		s.repos[key] = r
	}
	return r
}

func (s *Store) defaultBranch(owner, repo string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.repos[owner+"/"+repo]
	if !ok {
		return "", false
	}
	return r.defaultBranch, true
}

func (s *Store) failure(owner, repo, branch, path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures[fmt.Sprintf("%s/%s@%s/%s", owner, repo, branch, path)]
}

func (s *Store) getFile(owner, repo, branch, path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t := s.treeLocked(owner, repo, branch)
	if t == nil {
		return nil, false
	}
	b, ok := t.files[path]
	return b, ok
}

// listDir returns the immediate children of dirPath, similar to GitHub's
// GET /repos/:owner/:repo/contents/:path when :path is a directory. ok is
// false when the branch or directory does not exist.
func (s *Store) listDir(owner, repo, branch, dirPath string) ([]entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.treeLocked(owner, repo, branch)
	if t == nil {
		return nil, false
	}

	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}
	seen := map[string]bool{}
	entries := []entry{}
	for _, p := range t.order {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		name, _, isDir := strings.Cut(p[len(prefix):], "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, entry{name: name, path: prefix + name, isDir: isDir})
	}
	if len(entries) == 0 && dirPath != "" {
		return nil, false
	}
	return entries, true
}

// splitBranch splits "feature/x/docs/a.md" into a known branch and the rest.
// The longest matching branch name wins.
func (s *Store) splitBranch(owner, repo, rest string) (branch, path string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r := s.repos[owner+"/"+repo]
	if r == nil {
		return "", "", false
	}
	names := make([]string, 0, len(r.branches))
	for b := range r.branches {
		names = append(names, b)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, b := range names {
		if strings.HasPrefix(rest, b+"/") {
			return b, rest[len(b)+1:], true
		}
	}
	return "", "", false
}

func (s *Store) treeLocked(owner, repo, branch string) *tree {
	r := s.repos[owner+"/"+repo]
	if r == nil {
		return nil
	}
	return r.branches[branch]
}

func (s *Store) omitsDownloadURL() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.omitDownloadURL
}
