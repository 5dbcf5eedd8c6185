package repo

import (
	"context"
	"path"
	"strings"
)

// Ref identifies a repository at a branch. Branch is empty until resolved;
// after resolution the Ref is passed by value through every call.
type Ref struct {
	Owner  string
	Repo   string
	Branch string
}

// String renders the ref as owner/repo@branch.
func (r Ref) String() string {
	s := r.Owner + "/" + r.Repo
	if r.Branch != "" {
		s += "@" + r.Branch
	}
	return s
}

// WithBranch returns a copy of r pointing at branch.
func (r Ref) WithBranch(branch string) Ref {
	r.Branch = branch
	return r
}

// Kind discriminates the variants of Entry.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDir
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "other"
	}
}

// ParseKind maps the contents API "type" field onto a Kind.
func ParseKind(s string) Kind {
	switch s {
	case "file":
		return KindFile
	case "dir":
		return KindDir
	default:
		return KindOther
	}
}

// Entry is one file or directory returned by a contents listing.
// Content, Encoding, DownloadURL and URL are only meaningful for files and
// may each be empty.
type Entry struct {
	Kind        Kind
	Path        string // repository-relative
	Name        string
	Content     string // inline content as served, still encoded
	Encoding    string // "base64" when Content is set by GitHub
	DownloadURL string
	URL         string // canonical API URL
}

// Extension returns the lower-cased extension of the entry name without the
// leading dot, or "" when the name has none.
func (e Entry) Extension() string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(e.Name), "."))
}

// IsFile reports whether e is a file entry.
func (e Entry) IsFile() bool { return e.Kind == KindFile }

// IsDir reports whether e is a directory entry.
func (e Entry) IsDir() bool { return e.Kind == KindDir }

// Listing is the result of listing a path: File is set when the path names a
// single file, otherwise Entries holds the directory children in the order the
// host returned them (possibly none).
type Listing struct {
	File    *Entry
	Entries []Entry
}

// IsFile reports whether the listed path was a single file.
func (l Listing) IsFile() bool { return l.File != nil }

// Client is the port the walker and retriever use to talk to a repository host.
type Client interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
	List(ctx context.Context, ref Ref, path string) (Listing, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}
