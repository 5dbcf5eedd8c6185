// Package retrieve obtains the text of a single file entry. Strategies are
// tried in order and the first one that applies decides the outcome; a
// strategy that applies but fails does not hand over to the next one.
package retrieve

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/tilsley/repocat/apps/repocat/internal/repo"
)

// DefaultRawBase serves unprocessed file bytes for public GitHub.
const DefaultRawBase = "https://raw.githubusercontent.com"

// Fetcher downloads the body behind an absolute URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Strategy is one way of obtaining a file's bytes.
type Strategy interface {
	Name() string
	// Applies reports whether the strategy can be attempted for e.
	Applies(e repo.Entry) bool
	Retrieve(ctx context.Context, ref repo.Ref, e repo.Entry) ([]byte, error)
}

// Outcome is the result of retrieving one file. Err is the skip reason; when
// it is nil Content holds the file text.
type Outcome struct {
	Path     string
	Content  string
	Strategy string
	Err      error
}

// OK reports whether the file was retrieved.
func (o Outcome) OK() bool { return o.Err == nil }

// ErrNoStrategy is the skip reason when no strategy applies to an entry.
var ErrNoStrategy = errors.New("no retrieval strategy applies")

// Retriever runs a fixed pipeline of strategies.
type Retriever struct {
	strategies []Strategy
}

// New builds a Retriever from strategies, tried in the given order.
func New(strategies ...Strategy) *Retriever {
	return &Retriever{strategies: strategies}
}

// Default returns the inline → download URL → raw URL pipeline.
func Default(f Fetcher, rawBase string) *Retriever {
	return New(Inline{}, DownloadURL{Fetcher: f}, RawURL{Fetcher: f, Base: rawBase})
}

// Retrieve returns the outcome for e. It never panics on bad input and never
// returns an error directly: failures are carried in Outcome.Err.
func (r *Retriever) Retrieve(ctx context.Context, ref repo.Ref, e repo.Entry) Outcome {
	out := Outcome{Path: e.Path}
	for _, s := range r.strategies {
		if !s.Applies(e) {
			continue
		}
		out.Strategy = s.Name()
		b, err := s.Retrieve(ctx, ref, e)
		if err != nil {
			out.Err = fmt.Errorf("%s: %w", s.Name(), err)
			return out
		}
		out.Content = DecodeText(b)
		return out
	}
	out.Err = ErrNoStrategy
	return out
}

// DecodeText interprets b as UTF-8, replacing every invalid byte with U+FFFD.
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}

// Inline decodes base64 content embedded in the listing response.
type Inline struct{}

func (Inline) Name() string { return "inline" }

func (Inline) Applies(e repo.Entry) bool {
	return e.Content != "" && strings.EqualFold(e.Encoding, "base64")
}

func (Inline) Retrieve(_ context.Context, _ repo.Ref, e repo.Entry) ([]byte, error) {
	// GitHub wraps inline content at 60 columns; the std decoder skips \r and \n.
	b, err := base64.StdEncoding.DecodeString(e.Content)
	if err != nil {
		return nil, fmt.Errorf("decode base64 content for %s: %w", e.Path, err)
	}
	return b, nil
}

// DownloadURL fetches the direct-download link provided by the host.
type DownloadURL struct {
	Fetcher Fetcher
}

func (DownloadURL) Name() string { return "download_url" }

func (DownloadURL) Applies(e repo.Entry) bool { return e.DownloadURL != "" }

func (d DownloadURL) Retrieve(ctx context.Context, _ repo.Ref, e repo.Entry) ([]byte, error) {
	return d.Fetcher.Fetch(ctx, e.DownloadURL)
}

// RawURL reconstructs a raw-content URL from the ref and the entry path.
// It always applies and is meant to be last in the pipeline.
type RawURL struct {
	Fetcher Fetcher
	Base    string
}

func (RawURL) Name() string { return "raw_url" }

func (RawURL) Applies(repo.Entry) bool { return true }

func (r RawURL) Retrieve(ctx context.Context, ref repo.Ref, e repo.Entry) ([]byte, error) {
	if ref.Branch == "" {
		return nil, fmt.Errorf("raw url for %s: branch not resolved", e.Path)
	}
	return r.Fetcher.Fetch(ctx, RawContentURL(r.Base, ref, e.Path))
}

// RawContentURL builds base/owner/repo/branch/path, escaping each segment.
// An empty base means DefaultRawBase.
func RawContentURL(base string, ref repo.Ref, filePath string) string {
	if base == "" {
		base = DefaultRawBase
	}
	segs := []string{ref.Owner, ref.Repo}
	segs = append(segs, strings.Split(ref.Branch, "/")...)
	segs = append(segs, strings.Split(filePath, "/")...)
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(segs, "/")
}
