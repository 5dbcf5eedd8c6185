package walk

import (
	"github.com/tilsley/repocat/apps/repocat/internal/output"
	"github.com/tilsley/repocat/apps/repocat/internal/repo"
)

// Report records what happened to every entry the walker saw, in visit order.
type Report struct {
	Ref        repo.Ref
	Path       string
	Added      []string
	Skipped    []output.Item // excluded by extension
	Failed     []output.Item // retrieval failed
	FailedDirs []output.Item // listing failed
}

// Manifest converts the report into the YAML manifest for outPath.
func (r Report) Manifest(outPath string) output.Manifest {
	return output.Manifest{
		Repository: r.Ref.Owner + "/" + r.Ref.Repo,
		Branch:     r.Ref.Branch,
		Path:       r.Path,
		Output:     outPath,
		Added:      r.Added,
		Skipped:    r.Skipped,
		Failed:     r.Failed,
		FailedDirs: r.FailedDirs,
	}
}
