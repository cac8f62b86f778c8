package indexer

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/store"
)

const fixtureMain = `package fixture

// Greet returns a friendly greeting for name.
func Greet(name string) string {
	if name == "" {
		return "hello, stranger"
	}
	return "hello, " + name
}

type Greeter struct {
	Prefix string
}

func (g *Greeter) Say(name string) string {
	return g.Prefix + Greet(name)
}
`

func newGitFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(fixtureMain), 0o644))

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init", "-q")
	run("add", ".")
	run("commit", "-q", "-m", "initial commit")
	return dir
}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestPipeline_Run_IndexesAFreshRepo(t *testing.T) {
	dir := newGitFixture(t)
	st := store.NewMemStore()
	defer st.Close()

	p := New(dir, st, silentLogger())
	ctx := context.Background()
	require.NoError(t, p.Run(ctx))

	files, err := st.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].Path)

	symbols, err := st.AllSymbols(ctx)
	require.NoError(t, err)
	names := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		names[s.Name] = true
	}
	assert.True(t, names["Greet"], "expected Greet function symbol")
	assert.True(t, names["Greeter"], "expected Greeter type symbol")
	assert.True(t, names["Say"], "expected Say method symbol")

	edges, err := st.AllEdges(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, edges, "Say calling Greet should resolve to at least one edge")

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FileCount)
	assert.GreaterOrEqual(t, stats.CommitCount, 1)
}

func TestPipeline_Run_SecondPassIsIncremental(t *testing.T) {
	dir := newGitFixture(t)
	st := store.NewMemStore()
	defer st.Close()

	p := New(dir, st, silentLogger())
	ctx := context.Background()
	require.NoError(t, p.Run(ctx))

	firstSymbols, err := st.AllSymbols(ctx)
	require.NoError(t, err)
	firstEdges, err := st.AllEdges(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, firstEdges, "first pass should resolve Say -> Greet")

	// An unchanged repo re-indexed without --force should leave file
	// content untouched; symbol count must be stable and edges must survive
	// the second pass's full delete-and-reinsert, since no file changed.
	require.NoError(t, p.Run(ctx))
	secondSymbols, err := st.AllSymbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(firstSymbols), len(secondSymbols))

	secondEdges, err := st.AllEdges(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(firstEdges), len(secondEdges), "edges from unchanged files must not be wiped")
}

func TestPipeline_RunWithOptions_ForceTruncatesBeforeRebuilding(t *testing.T) {
	dir := newGitFixture(t)
	st := store.NewMemStore()
	defer st.Close()

	p := New(dir, st, silentLogger())
	ctx := context.Background()
	require.NoError(t, p.Run(ctx))

	require.NoError(t, p.RunWithOptions(ctx, Options{Force: true}))

	files, err := st.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1, "force rebuild should still converge on exactly the files on disk")
}

func TestPipeline_NewWithPrefix_NamespacesPathsAcrossRepos(t *testing.T) {
	dirA := newGitFixture(t)
	dirB := newGitFixture(t)
	st := store.NewMemStore()
	defer st.Close()

	ctx := context.Background()
	pa := NewWithPrefix(dirA, "svc-a", st, silentLogger())
	require.NoError(t, pa.Run(ctx))
	pb := NewWithPrefix(dirB, "svc-b", st, silentLogger())
	require.NoError(t, pb.Run(ctx))

	files, err := st.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2, "both repos' files should coexist under distinct prefixes")

	paths := make(map[string]bool, len(files))
	for _, f := range files {
		paths[f.Path] = true
	}
	assert.True(t, paths["svc-a/main.go"])
	assert.True(t, paths["svc-b/main.go"])

	// Re-running svc-a alone must not perturb svc-b's rows or wipe its edges.
	require.NoError(t, pa.Run(ctx))
	filesAfter, err := st.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, filesAfter, 2)
}

func TestPipeline_LogicalAndStripPrefix_RoundTrip(t *testing.T) {
	p := NewWithPrefix("/repo", "svc-a", store.NewMemStore(), silentLogger())
	logical := p.logical("internal/foo.go")
	assert.Equal(t, "svc-a/internal/foo.go", logical)

	rel, ok := p.stripPrefix(logical)
	assert.True(t, ok)
	assert.Equal(t, "internal/foo.go", rel)

	_, ok = p.stripPrefix("svc-b/internal/foo.go")
	assert.False(t, ok, "a path under a different repo's prefix does not belong to this pipeline")

	unprefixed := New("/repo", store.NewMemStore(), silentLogger())
	assert.Equal(t, "internal/foo.go", unprefixed.logical("internal/foo.go"))
}

func TestFileRoleFor_ClassifiesByPathHeuristics(t *testing.T) {
	cases := map[string]string{
		"internal/foo/foo_test.go": "test",
		"docs/README.md":           "doc",
		"config/app.yaml":          "config",
		"gen/api.pb.go":            "generated",
		"internal/foo/foo.go":      "source",
	}
	for path, want := range cases {
		assert.Equal(t, want, string(fileRoleFor(path)), path)
	}
}

func TestIsAnchorKind_MatchesStructuralKindsOnly(t *testing.T) {
	assert.True(t, isAnchorKind("struct"))
	assert.True(t, isAnchorKind("interface"))
	assert.False(t, isAnchorKind("function"))
	assert.False(t, isAnchorKind("variable"))
}
