package walk_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repocat/apps/repocat/internal/output"
	"github.com/tilsley/repocat/apps/repocat/internal/repo"
	"github.com/tilsley/repocat/apps/repocat/internal/retrieve"
	"github.com/tilsley/repocat/apps/repocat/internal/walk"
	"github.com/tilsley/repocat/pkg/logging"
)

var (
	widgets = repo.Ref{Owner: "acme", Repo: "widgets", Branch: "main"}
	bar     = strings.Repeat("=", 80)
)

func section(path, content string) string {
	return "\n\n" + bar + "\nFILE: " + path + "\n" + bar + "\n\n" + content
}

// run walks ref/path over m and returns the document, the report and the log.
func run(t *testing.T, m *repo.InMem, ref repo.Ref, path string, opts ...walk.Option) (string, walk.Report, string) {
	t.Helper()
	var doc, logs bytes.Buffer
	sink := output.NewWriter(&doc)
	w := walk.New(m, retrieve.Default(m, m.RawBase), sink, logging.NewWith(&logs, "text", "debug"), opts...)

	require.NoError(t, w.Walk(context.Background(), ref, path))
	require.NoError(t, sink.Close())
	return doc.String(), w.Report(), logs.String()
}

type failingSink struct{ err error }

func (f failingSink) Append(string, string) error { return f.err }

// ─── Traversal ────────────────────────────────────────────────────────────────

func TestWalk_WidgetsScenario(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "src/main.py", "print('hello')\n")

	doc, report, _ := run(t, m, widgets, "")

	assert.Equal(t, section("README.md", "# widgets\n")+section("src/main.py", "print('hello')\n"), doc)
	assert.Equal(t, []string{"README.md", "src/main.py"}, report.Added)
}

func TestWalk_ListingOrderNotAlphabetical(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "zeta.txt", "z")
	m.SetFile(widgets, "lib/b.txt", "b")
	m.SetFile(widgets, "alpha.txt", "a")
	m.SetFile(widgets, "lib/a.txt", "a")

	_, report, _ := run(t, m, widgets, "")

	assert.Equal(t, []string{"zeta.txt", "lib/b.txt", "lib/a.txt", "alpha.txt"}, report.Added)
}

func TestWalk_EachFileExactlyOnce(t *testing.T) {
	m := repo.NewInMem()
	paths := []string{"a.txt", "d1/b.txt", "d1/d2/c.txt", "d1/d2/d3/d.txt", "e.txt"}
	for _, p := range paths {
		m.SetFile(widgets, p, "content of "+p+"\n")
	}

	doc, report, _ := run(t, m, widgets, "")

	assert.Equal(t, paths, report.Added)
	for _, p := range paths {
		assert.Equal(t, 1, strings.Count(doc, "FILE: "+p+"\n"), p)
	}
}

func TestWalk_Idempotent(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "src/main.py", "print('hello')\n")
	m.SetFile(widgets, "src/util/io.py", "import os\n")

	first, _, _ := run(t, m, widgets, "")
	second, _, _ := run(t, m, widgets, "")

	assert.Equal(t, first, second)
}

func TestWalk_Subtree(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "src/main.py", "print('hello')\n")

	doc, report, _ := run(t, m, widgets, "src")

	assert.Equal(t, section("src/main.py", "print('hello')\n"), doc)
	assert.Equal(t, "src", report.Path)
}

func TestWalk_StartAtSingleFile(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "docs/logo.png", "not really a png")

	_, report, _ := run(t, m, widgets, "docs/logo.png")

	assert.Equal(t, []string{"docs/logo.png"}, report.Added, "an explicitly requested file bypasses the extension filter")
}

// ─── Binary filter ────────────────────────────────────────────────────────────

func TestWalk_SkipsExcludedExtensionsCaseInsensitive(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "assets/Logo.PNG", "png bytes")
	m.SetFile(widgets, "assets/clip.mp4", "mp4 bytes")
	m.SetFile(widgets, "dist/app.tar.gz", "gz bytes")

	doc, report, logs := run(t, m, widgets, "")

	assert.Equal(t, []string{"README.md"}, report.Added)
	require.Len(t, report.Skipped, 3)
	assert.Equal(t, "assets/Logo.PNG", report.Skipped[0].Path)
	assert.NotContains(t, doc, "Logo.PNG")
	assert.NotContains(t, doc, "clip.mp4")
	assert.Contains(t, logs, "skipping binary file")
	assert.Contains(t, logs, "path=assets/Logo.PNG")
}

func TestWalk_ExtraExcludedExtensions(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "model.onnx", "weights")

	_, report, _ := run(t, m, widgets, "", walk.WithExclude(walk.NewExcludeSet(".ONNX")))

	assert.Equal(t, []string{"README.md"}, report.Added)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "model.onnx", report.Skipped[0].Path)
}

// ─── Failure isolation ────────────────────────────────────────────────────────

func TestWalk_ListingFailureIsolatedToSubtree(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "a/one.txt", "1")
	m.SetFile(widgets, "b/two.txt", "2")
	m.SetFile(widgets, "c/three.txt", "3")
	m.FailList(widgets, "b", errors.New("502 bad gateway"))

	doc, report, logs := run(t, m, widgets, "")

	assert.Equal(t, []string{"a/one.txt", "c/three.txt"}, report.Added)
	require.Len(t, report.FailedDirs, 1)
	assert.Equal(t, "b", report.FailedDirs[0].Path)
	assert.NotContains(t, doc, "two.txt")
	assert.Contains(t, logs, "listing failed")
}

func TestWalk_RootListingFailureIsNotFatal(t *testing.T) {
	m := repo.NewInMem()
	m.FailList(widgets, "", errors.New("boom"))

	doc, report, _ := run(t, m, widgets, "")

	assert.Empty(t, doc)
	require.Len(t, report.FailedDirs, 1)
	assert.Equal(t, "", report.FailedDirs[0].Path)
}

func TestWalk_RetrievalFailureSkipsFileOnly(t *testing.T) {
	m := repo.NewInMem()
	m.Inline = false
	m.RawBase = "https://raw.example"
	m.SetFile(widgets, "a.txt", "A")
	m.SetFile(widgets, "b.txt", "B")
	m.SetFile(widgets, "c.txt", "C")
	retr := retrieve.New(retrieve.DownloadURL{Fetcher: skipFetcher{inner: m, bad: "b.txt"}})

	var doc, logs bytes.Buffer
	sink := output.NewWriter(&doc)
	w := walk.New(m, retr, sink, logging.NewWith(&logs, "text", "info"))
	require.NoError(t, w.Walk(context.Background(), widgets, ""))
	require.NoError(t, sink.Close())

	report := w.Report()
	assert.Equal(t, []string{"a.txt", "c.txt"}, report.Added)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "b.txt", report.Failed[0].Path)
	assert.Equal(t, section("a.txt", "A")+section("c.txt", "C"), doc.String())
	assert.Contains(t, logs.String(), "retrieval failed")
}

// skipFetcher fails every URL ending in bad and delegates the rest.
type skipFetcher struct {
	inner retrieve.Fetcher
	bad   string
}

func (s skipFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasSuffix(url, "/"+s.bad) {
		return nil, repo.StatusError{URL: url, Code: 500}
	}
	return s.inner.Fetch(ctx, url)
}

func TestWalk_SinkErrorIsFatal(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "a.txt", "A")
	m.SetFile(widgets, "b.txt", "B")
	diskFull := errors.New("no space left on device")

	w := walk.New(m, retrieve.Default(m, ""), failingSink{err: diskFull}, logging.Discard())
	err := w.Walk(context.Background(), widgets, "")

	assert.ErrorIs(t, err, diskFull)
	assert.Empty(t, w.Report().Added)
}

func TestWalk_CancelledContextStops(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "a.txt", "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m.FailList(widgets, "", context.Canceled)

	w := walk.New(m, retrieve.Default(m, ""), output.NewWriter(&bytes.Buffer{}), logging.Discard())

	assert.ErrorIs(t, w.Walk(ctx, widgets, ""), context.Canceled)
}

func TestWalk_RequiresResolvedBranch(t *testing.T) {
	w := walk.New(repo.NewInMem(), retrieve.Default(repo.NewInMem(), ""), output.NewWriter(&bytes.Buffer{}), logging.Discard())

	assert.Error(t, w.Walk(context.Background(), widgets.WithBranch(""), ""))
}

// ─── Branch handling ──────────────────────────────────────────────────────────

func TestWalk_FallsBackFromMainToMaster(t *testing.T) {
	master := widgets.WithBranch("master")
	m := repo.NewInMem()
	m.Inline = false
	m.RawBase = "https://raw.example"
	m.SetFile(master, "README.md", "# legacy\n")
	m.SetFile(master, "src/main.py", "print('legacy')\n")

	doc, report, logs := run(t, m, widgets, "")

	assert.Equal(t, section("README.md", "# legacy\n")+section("src/main.py", "print('legacy')\n"), doc)
	assert.Equal(t, "master", report.Ref.Branch)
	assert.Equal(t, 1, m.ListCalls(widgets, ""), "main is tried exactly once")
	assert.Equal(t, 0, m.ListCalls(widgets, "src"), "subtree stays on the fallback branch")
	assert.Contains(t, logs, "fallback=master")
}

func TestWalk_NoFallbackForOtherBranches(t *testing.T) {
	dev := widgets.WithBranch("develop")
	m := repo.NewInMem()
	m.SetFile(widgets.WithBranch("master"), "README.md", "x")

	_, report, _ := run(t, m, dev, "")

	assert.Empty(t, report.Added)
	require.Len(t, report.FailedDirs, 1)
	assert.Equal(t, 0, m.ListCalls(widgets.WithBranch("master"), ""))
}

func TestList_NonNotFoundErrorDoesNotFallBack(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets.WithBranch("master"), "README.md", "x")
	m.FailList(widgets, "", errors.New("rate limited"))

	_, got, err := walk.List(context.Background(), m, logging.Discard(), widgets, "")

	assert.EqualError(t, err, "rate limited")
	assert.Equal(t, "main", got.Branch)
	assert.Equal(t, 0, m.ListCalls(widgets.WithBranch("master"), ""))
}

func TestResolveBranch_ExplicitBranchMakesNoCall(t *testing.T) {
	m := repo.NewInMem() // no default branch seeded: a lookup would fail

	got, err := walk.ResolveBranch(context.Background(), m, widgets.WithBranch("release"))

	require.NoError(t, err)
	assert.Equal(t, "release", got.Branch)
}

func TestResolveBranch_UsesDefaultBranch(t *testing.T) {
	m := repo.NewInMem()
	m.SetDefaultBranch("acme", "widgets", "master")

	got, err := walk.ResolveBranch(context.Background(), m, widgets.WithBranch(""))

	require.NoError(t, err)
	assert.Equal(t, "master", got.Branch)
}

func TestResolveBranch_NotFoundPropagates(t *testing.T) {
	_, err := walk.ResolveBranch(context.Background(), repo.NewInMem(), widgets.WithBranch(""))

	assert.True(t, repo.IsNotFound(err))
}

func TestExcludeSet(t *testing.T) {
	s := walk.NewExcludeSet(" .Svg ", "")

	assert.True(t, s.Contains("PNG"))
	assert.True(t, s.Contains("svg"))
	assert.False(t, s.Contains("go"))
	assert.Len(t, s.Sorted(), len(walk.DefaultExcluded)+1)
}
