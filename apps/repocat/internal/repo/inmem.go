package repo

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
)

// InMem is an in-memory Client for unit tests. Files are listed in the order
// they were first seeded, which lets tests pin traversal order.
type InMem struct {
	mu       sync.Mutex
	defaults map[string]string   // "owner/repo" -> default branch
	trees    map[string]*memTree // "owner/repo@branch" -> tree
	failures map[string]error    // "owner/repo@branch/path" -> listing error
	urls     map[string][]byte   // absolute URL -> body
	calls    map[string]int      // "owner/repo@branch/path" -> List calls
	fetched  []string            // every URL passed to Fetch, in order

	// Inline controls whether listed file entries carry base64 content.
	Inline bool
	// RawBase, when set, makes file entries carry a download URL of the form
	// RawBase/owner/repo/branch/path, and Fetch serves such URLs from the store.
	RawBase string
}

type memTree struct {
	order []string
	files map[string]string
}

// NewInMem creates an empty InMem client that serves inline content.
func NewInMem() *InMem {
	return &InMem{
		defaults: make(map[string]string),
		trees:    make(map[string]*memTree),
		failures: make(map[string]error),
		urls:     make(map[string][]byte),
		calls:    make(map[string]int),
		Inline:   true,
	}
}

// SetDefaultBranch records the default branch reported for owner/repo.
func (m *InMem) SetDefaultBranch(owner, repo, branch string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults[owner+"/"+repo] = branch
}

// SetFile seeds a file at ref.
func (m *InMem) SetFile(ref Ref, path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.trees[ref.String()]
	if t == nil {
		t = &memTree{files: make(map[string]string)}
		m.trees[ref.String()] = t
	}
	if _, ok := t.files[path]; !ok {
		t.order = append(t.order, path)
	}
	t.files[path] = content
}

// FailList makes List of path at ref return err.
func (m *InMem) FailList(ref Ref, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[ref.String()+"/"+path] = err
}

// SetURL seeds the body returned by Fetch for url.
func (m *InMem) SetURL(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[url] = body
}

// ListCalls returns how many times List was called for path at ref.
func (m *InMem) ListCalls(ref Ref, path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ref.String()+"/"+path]
}

// Fetched returns every URL passed to Fetch, in call order.
func (m *InMem) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.fetched))
	copy(out, m.fetched)
	return out
}

// DefaultBranch returns the seeded default branch, or NotFoundError.
func (m *InMem) DefaultBranch(_ context.Context, owner, repo string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.defaults[owner+"/"+repo]
	if !ok {
		return "", NotFoundError{Owner: owner, Repo: repo}
	}
	return b, nil
}

// List returns the file at path, or the immediate children of path.
func (m *InMem) List(_ context.Context, ref Ref, dirPath string) (Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ref.String() + "/" + dirPath
	m.calls[key]++
	if err, ok := m.failures[key]; ok {
		return Listing{}, err
	}

	notFound := NotFoundError{Owner: ref.Owner, Repo: ref.Repo, Path: dirPath, Branch: ref.Branch}
	t := m.trees[ref.String()]
	if t == nil {
		return Listing{}, notFound
	}
	if content, ok := t.files[dirPath]; ok {
		e := m.fileEntry(ref, dirPath, content)
		return Listing{File: &e}, nil
	}

	prefix := dirPath
	if prefix != "" {
		prefix += "/"
	}
	seen := make(map[string]bool)
	entries := []Entry{}
	for _, p := range t.order {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := p[len(prefix):]
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		if isDir {
			entries = append(entries, Entry{Kind: KindDir, Name: name, Path: prefix + name})
			continue
		}
		entries = append(entries, m.fileEntry(ref, p, t.files[p]))
	}
	if len(entries) == 0 && dirPath != "" {
		return Listing{}, notFound
	}
	return Listing{Entries: entries}, nil
}

func (m *InMem) fileEntry(ref Ref, p, content string) Entry {
	e := Entry{Kind: KindFile, Path: p, Name: p[strings.LastIndex(p, "/")+1:]}
	if m.Inline {
		e.Content = base64.StdEncoding.EncodeToString([]byte(content))
		e.Encoding = "base64"
	}
	if m.RawBase != "" {
		e.DownloadURL = fmt.Sprintf("%s/%s/%s/%s/%s", m.RawBase, ref.Owner, ref.Repo, ref.Branch, p)
	}
	return e
}

// Fetch serves seeded URLs first, then RawBase URLs from the file store.
func (m *InMem) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, url)

	if body, ok := m.urls[url]; ok {
		return body, nil
	}
	if m.RawBase != "" && strings.HasPrefix(url, m.RawBase+"/") {
		parts := strings.SplitN(strings.TrimPrefix(url, m.RawBase+"/"), "/", 4)
		if len(parts) == 4 {
			ref := Ref{Owner: parts[0], Repo: parts[1], Branch: parts[2]}
			if t := m.trees[ref.String()]; t != nil {
				if content, ok := t.files[parts[3]]; ok {
					return []byte(content), nil
				}
			}
		}
	}
	return nil, StatusError{URL: url, Code: 404}
}
