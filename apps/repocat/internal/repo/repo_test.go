package repo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/repocat/apps/repocat/internal/repo"
)

var widgets = repo.Ref{Owner: "acme", Repo: "widgets", Branch: "main"}

func TestEntry_Extension(t *testing.T) {
	cases := map[string]string{
		"main.py":        "py",
		"LOGO.PNG":       "png",
		"archive.tar.gz": "gz",
		"Makefile":       "",
		".gitignore":     "gitignore",
	}
	for name, want := range cases {
		assert.Equal(t, want, repo.Entry{Name: name}.Extension(), name)
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, repo.KindFile, repo.ParseKind("file"))
	assert.Equal(t, repo.KindDir, repo.ParseKind("dir"))
	assert.Equal(t, repo.KindOther, repo.ParseKind("symlink"))
	assert.Equal(t, "dir", repo.KindDir.String())
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "acme/widgets@main", widgets.String())
	assert.Equal(t, "acme/widgets", repo.Ref{Owner: "acme", Repo: "widgets"}.String())
	assert.Equal(t, "master", widgets.WithBranch("master").Branch)
	assert.Equal(t, "main", widgets.Branch, "WithBranch must not mutate the receiver")
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("list: %w", repo.NotFoundError{Owner: "acme", Repo: "widgets", Path: "src", Branch: "main"})

	assert.True(t, repo.IsNotFound(err))
	assert.False(t, repo.IsNotFound(errors.New("boom")))
	assert.Contains(t, err.Error(), `acme/widgets/src not found at "main"`)
}

func TestInMem_ListPreservesSeedOrder(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "README.md", "# widgets\n")
	m.SetFile(widgets, "src/main.py", "print('hi')\n")
	m.SetFile(widgets, "LICENSE", "MIT\n")

	l, err := m.List(context.Background(), widgets, "")

	require.NoError(t, err)
	require.Len(t, l.Entries, 3)
	assert.Equal(t, "README.md", l.Entries[0].Path)
	assert.Equal(t, repo.KindDir, l.Entries[1].Kind)
	assert.Equal(t, "src", l.Entries[1].Path)
	assert.Equal(t, "LICENSE", l.Entries[2].Path)
	assert.Equal(t, "base64", l.Entries[0].Encoding)
}

func TestInMem_ListSingleFile(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets, "src/main.py", "print('hi')\n")

	l, err := m.List(context.Background(), widgets, "src/main.py")

	require.NoError(t, err)
	require.True(t, l.IsFile())
	assert.Equal(t, "main.py", l.File.Name)
}

func TestInMem_UnknownBranchIsNotFound(t *testing.T) {
	m := repo.NewInMem()
	m.SetFile(widgets.WithBranch("master"), "README.md", "x")

	_, err := m.List(context.Background(), widgets, "")

	assert.True(t, repo.IsNotFound(err))
	assert.Equal(t, 1, m.ListCalls(widgets, ""))
}

func TestInMem_FetchServesRawBase(t *testing.T) {
	m := repo.NewInMem()
	m.RawBase = "https://raw.example"
	m.SetFile(widgets, "src/main.py", "print('hi')\n")

	body, err := m.Fetch(context.Background(), "https://raw.example/acme/widgets/main/src/main.py")

	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(body))

	_, err = m.Fetch(context.Background(), "https://raw.example/acme/widgets/main/missing")
	var se repo.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 404, se.Code)
}
