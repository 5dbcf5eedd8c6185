// Package walk resolves a repository branch and visits its directory tree,
// handing every text file to a retriever and appending the result to a sink.
// Listing and retrieval failures are logged and recorded, never fatal; only
// sink errors and context cancellation stop a walk.
package walk

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilsley/repocat/apps/repocat/internal/output"
	"github.com/tilsley/repocat/apps/repocat/internal/repo"
	"github.com/tilsley/repocat/apps/repocat/internal/retrieve"
)

const instrName = "github.com/tilsley/repocat"

// Sink receives retrieved files in traversal order.
type Sink interface {
	Append(path, content string) error
}

// Retriever turns a file entry into an outcome.
type Retriever interface {
	Retrieve(ctx context.Context, ref repo.Ref, e repo.Entry) retrieve.Outcome
}

// Walker visits one repository tree. It is single-use and not safe for
// concurrent use.
type Walker struct {
	lister    Lister
	retriever Retriever
	sink      Sink
	exclude   ExcludeSet
	log       *slog.Logger
	report    Report

	added      metric.Int64Counter
	skipped    metric.Int64Counter
	failed     metric.Int64Counter
	failedDirs metric.Int64Counter
}

// Option customises a Walker.
type Option func(*Walker)

// WithExclude replaces the default exclusion set.
func WithExclude(s ExcludeSet) Option {
	return func(w *Walker) { w.exclude = s }
}

// New creates a Walker that lists through l, retrieves through r and writes to sink.
func New(l Lister, r Retriever, sink Sink, log *slog.Logger, opts ...Option) *Walker {
	m := otel.Meter(instrName)
	added, _ := m.Int64Counter("repocat.files.added",
		metric.WithDescription("Files written to the combined output"))
	skipped, _ := m.Int64Counter("repocat.files.skipped",
		metric.WithDescription("Files skipped because of their extension"))
	failed, _ := m.Int64Counter("repocat.files.failed",
		metric.WithDescription("Files whose content could not be retrieved"))
	failedDirs, _ := m.Int64Counter("repocat.dirs.failed",
		metric.WithDescription("Directories whose listing failed"))

	w := &Walker{
		lister:     l,
		retriever:  r,
		sink:       sink,
		exclude:    NewExcludeSet(),
		log:        log,
		added:      added,
		skipped:    skipped,
		failed:     failed,
		failedDirs: failedDirs,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk visits the subtree of ref rooted at path. ref must carry a resolved
// branch. The returned error is non-nil only when the sink failed or ctx was
// cancelled.
func (w *Walker) Walk(ctx context.Context, ref repo.Ref, path string) error {
	if ref.Branch == "" {
		return fmt.Errorf("walk %s: branch not resolved", ref)
	}
	w.report.Ref = ref
	w.report.Path = path

	ctx, span := otel.Tracer(instrName).Start(ctx, "Walk",
		trace.WithAttributes(
			attribute.String("repo", ref.Owner+"/"+ref.Repo),
			attribute.String("branch", ref.Branch),
			attribute.String("path", path),
		),
	)
	defer span.End()

	if err := w.walkDir(ctx, ref, path, true); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Report returns what the walk has done so far.
func (w *Walker) Report() Report { return w.report }

func (w *Walker) walkDir(ctx context.Context, ref repo.Ref, path string, root bool) error {
	listing, ref, err := List(ctx, w.lister, w.log, ref, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		w.log.Warn("listing failed", "path", displayPath(path), "branch", ref.Branch, "error", err)
		w.report.FailedDirs = append(w.report.FailedDirs, output.Item{Path: path, Reason: err.Error()})
		w.failedDirs.Add(ctx, 1)
		return nil
	}
	if root {
		w.report.Ref = ref
	}

	if listing.IsFile() {
		return w.addFile(ctx, ref, *listing.File)
	}

	for _, e := range listing.Entries {
		switch e.Kind {
		case repo.KindDir:
			if err := w.walkDir(ctx, ref, e.Path, false); err != nil {
				return err
			}
		case repo.KindFile:
			if ext := e.Extension(); w.exclude.Contains(ext) {
				w.log.Info("skipping binary file", "path", e.Path)
				w.report.Skipped = append(w.report.Skipped, output.Item{Path: e.Path, Reason: "excluded extension ." + ext})
				w.skipped.Add(ctx, 1)
				continue
			}
			if err := w.addFile(ctx, ref, e); err != nil {
				return err
			}
		default:
			w.log.Debug("ignoring entry", "path", e.Path, "kind", e.Kind.String())
		}
	}
	return nil
}

func (w *Walker) addFile(ctx context.Context, ref repo.Ref, e repo.Entry) error {
	out := w.retriever.Retrieve(ctx, ref, e)
	if !out.OK() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		w.log.Warn("retrieval failed", "path", e.Path, "strategy", out.Strategy, "error", out.Err)
		w.report.Failed = append(w.report.Failed, output.Item{Path: e.Path, Reason: out.Err.Error()})
		w.failed.Add(ctx, 1)
		return nil
	}

	if err := w.sink.Append(e.Path, out.Content); err != nil {
		return fmt.Errorf("append %s: %w", e.Path, err)
	}
	w.log.Info("added file", "path", e.Path, "strategy", out.Strategy)
	w.report.Added = append(w.report.Added, e.Path)
	w.added.Add(ctx, 1)
	return nil
}

func displayPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
