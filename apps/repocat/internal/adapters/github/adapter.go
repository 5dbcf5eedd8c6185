// Package github implements repo.Client using the official go-github library.
// Wire it up with a *github.Client from internal/platform/github.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/repocat/apps/repocat/internal/repo"
)

// Adapter wraps a go-github client and implements repo.Client.
type Adapter struct {
	gh *gogithub.Client
}

// New creates an Adapter from a configured *github.Client.
func New(gh *gogithub.Client) *Adapter {
	return &Adapter{gh: gh}
}

// DefaultBranch reads default_branch from the repository metadata endpoint.
func (a *Adapter) DefaultBranch(ctx context.Context, owner, repoName string) (string, error) {
	r, resp, err := a.gh.Repositories.Get(ctx, owner, repoName)
	if err != nil {
		if isNotFound(resp) {
			return "", repo.NotFoundError{Owner: owner, Repo: repoName}
		}
		return "", fmt.Errorf("get repository %s/%s: %w", owner, repoName, err)
	}
	return r.GetDefaultBranch(), nil
}

// List calls the contents API for path at ref.Branch. A file path yields a
// Listing with File set; a directory yields its entries in API order.
func (a *Adapter) List(ctx context.Context, ref repo.Ref, path string) (repo.Listing, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref.Branch}
	file, dir, resp, err := a.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, opts)
	if err != nil {
		if isNotFound(resp) {
			return repo.Listing{}, repo.NotFoundError{Owner: ref.Owner, Repo: ref.Repo, Path: path, Branch: ref.Branch}
		}
		return repo.Listing{}, fmt.Errorf("get contents %s/%s: %w", ref, path, err)
	}

	if file != nil {
		e := toEntry(file)
		return repo.Listing{File: &e}, nil
	}
	entries := make([]repo.Entry, 0, len(dir))
	for _, c := range dir {
		entries = append(entries, toEntry(c))
	}
	return repo.Listing{Entries: entries}, nil
}

// Fetch downloads url through the go-github client's http.Client so the
// request carries the configured auth transport.
func (a *Adapter) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := a.gh.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // non-actionable after reading

	if resp.StatusCode != http.StatusOK {
		return nil, repo.StatusError{URL: url, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return body, nil
}

func toEntry(c *gogithub.RepositoryContent) repo.Entry {
	e := repo.Entry{
		Kind:        repo.ParseKind(c.GetType()),
		Path:        c.GetPath(),
		Name:        c.GetName(),
		Encoding:    c.GetEncoding(),
		DownloadURL: c.GetDownloadURL(),
		URL:         c.GetURL(),
	}
	// GetContent on RepositoryContent decodes; the raw field is what we carry.
	if c.Content != nil {
		e.Content = *c.Content
	}
	return e
}

func isNotFound(resp *gogithub.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}
