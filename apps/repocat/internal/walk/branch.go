package walk

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tilsley/repocat/apps/repocat/internal/repo"
)

const (
	mainBranch   = "main"
	masterBranch = "master"
)

// BranchResolver is the slice of repo.Client needed to resolve a branch.
type BranchResolver interface {
	DefaultBranch(ctx context.Context, owner, repo string) (string, error)
}

// ResolveBranch returns ref with a concrete branch. A branch already set on
// ref is returned as is without a remote call; otherwise the repository's
// default branch is looked up. Errors propagate unchanged in kind.
func ResolveBranch(ctx context.Context, c BranchResolver, ref repo.Ref) (repo.Ref, error) {
	if ref.Branch != "" {
		return ref, nil
	}
	branch, err := c.DefaultBranch(ctx, ref.Owner, ref.Repo)
	if err != nil {
		return ref, fmt.Errorf("resolve default branch for %s: %w", ref, err)
	}
	if branch == "" {
		branch = mainBranch
	}
	return ref.WithBranch(branch), nil
}

// Lister is the slice of repo.Client needed to list a path.
type Lister interface {
	List(ctx context.Context, ref repo.Ref, path string) (repo.Listing, error)
}

// List lists path at ref. When ref is on "main" and the host reports not
// found, the call is retried once on "master"; the returned Ref names the
// branch that actually served the listing.
func List(ctx context.Context, c Lister, log *slog.Logger, ref repo.Ref, path string) (repo.Listing, repo.Ref, error) {
	l, err := c.List(ctx, ref, path)
	if err == nil {
		return l, ref, nil
	}
	if ref.Branch != mainBranch || !repo.IsNotFound(err) {
		return repo.Listing{}, ref, err
	}

	fallback := ref.WithBranch(masterBranch)
	log.Info("branch not found, retrying", "path", path, "branch", ref.Branch, "fallback", fallback.Branch)
	l, err = c.List(ctx, fallback, path)
	if err != nil {
		return repo.Listing{}, ref, err
	}
	return l, fallback, nil
}
