// Package combine runs one repocat job end to end: resolve the branch, open
// the output document, walk the tree, then write the optional manifest.
package combine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tilsley/repocat/apps/repocat/internal/output"
	"github.com/tilsley/repocat/apps/repocat/internal/repo"
	"github.com/tilsley/repocat/apps/repocat/internal/retrieve"
	"github.com/tilsley/repocat/apps/repocat/internal/walk"
)

// Options describes a run. Ref.Branch may be empty, in which case the
// repository's default branch is used.
type Options struct {
	Ref      repo.Ref
	Path     string
	Output   string
	Manifest string
	RawBase  string
	Exclude  walk.ExcludeSet
}

// Run executes the job. Per-file and per-directory failures end up in the
// report; the returned error is reserved for fatal conditions: the branch
// cannot be resolved, the output cannot be written, or ctx is cancelled.
func Run(ctx context.Context, client repo.Client, opts Options, log *slog.Logger) (walk.Report, error) {
	ref, err := walk.ResolveBranch(ctx, client, opts.Ref)
	if err != nil {
		return walk.Report{}, err
	}
	log.Info("resolved branch", "repo", ref.Owner+"/"+ref.Repo, "branch", ref.Branch)

	// The output is only created once the branch is known so that a bad
	// repository name never truncates a previous result.
	w, err := output.Create(opts.Output)
	if err != nil {
		return walk.Report{}, err
	}

	exclude := opts.Exclude
	if exclude == nil {
		exclude = walk.NewExcludeSet()
	}
	walker := walk.New(client, retrieve.Default(client, opts.RawBase), w, log, walk.WithExclude(exclude))
	walkErr := walker.Walk(ctx, ref, strings.Trim(opts.Path, "/"))
	closeErr := w.Close()
	report := walker.Report()
	if walkErr != nil {
		return report, walkErr
	}
	if closeErr != nil {
		return report, fmt.Errorf("close output %s: %w", opts.Output, closeErr)
	}

	if opts.Manifest != "" {
		if err := output.WriteManifest(opts.Manifest, report.Manifest(opts.Output)); err != nil {
			return report, err
		}
	}

	log.Info("All files downloaded and combined into "+opts.Output,
		"added", len(report.Added),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"failedDirs", len(report.FailedDirs),
	)
	return report, nil
}
