package gitminer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roam/internal/model"
)

func TestParseLog_SplitsCommitsAndNumstatRows(t *testing.T) {
	raw := []byte(
		"COMMIT:abc123|Ada Lovelace|1700000000|add parser\n" +
			"10\t2\tinternal/parser/parser.go\n" +
			"0\t5\tinternal/old/legacy.go\n" +
			"COMMIT:def456|Grace Hopper|1700003600|fix bug\n" +
			"1\t1\tinternal/parser/parser.go\n",
	)

	commits, changes := parseLog(raw)

	require.Len(t, commits, 2)
	assert.Equal(t, "abc123", commits[0].Hash)
	assert.Equal(t, "Ada Lovelace", commits[0].Author)
	assert.Equal(t, int64(1700000000), commits[0].Timestamp)

	require.Len(t, changes, 3)
	assert.Equal(t, "internal/parser/parser.go", changes[0].Path)
	assert.Equal(t, 10, changes[0].LinesAdded)
	assert.Equal(t, "def456", changes[2].CommitHash)
}

func TestNormalizeRename_HandlesBraceAndPlainForms(t *testing.T) {
	assert.Equal(t, "internal/new/file.go", normalizeRename("internal/{old => new}/file.go"))
	assert.Equal(t, "pkg/new.go", normalizeRename("pkg/old.go => pkg/new.go"))
	assert.Equal(t, "unchanged.go", normalizeRename("unchanged.go"))
}

func TestParseNumstat_TreatsDashAsBinary(t *testing.T) {
	assert.Equal(t, 0, parseNumstat("-"))
	assert.Equal(t, 42, parseNumstat("42"))
}

func TestResolveCochangeIDs_AggregatesPairsWithinCommitSizeBounds(t *testing.T) {
	changes := []model.FileChange{
		{CommitHash: "c1", Path: "a.go"},
		{CommitHash: "c1", Path: "b.go"},
		{CommitHash: "c2", Path: "a.go"},
		{CommitHash: "c2", Path: "b.go"},
		{CommitHash: "c2", Path: "c.go"},
	}
	pathToID := map[string]int64{"a.go": 1, "b.go": 2, "c.go": 3}

	pairs := ResolveCochangeIDs(changes, pathToID)

	require.Len(t, pairs, 3) // (a,b), (a,c), (b,c)
	var ab model.Cochange
	for _, p := range pairs {
		if p.FileA == 1 && p.FileB == 2 {
			ab = p
		}
	}
	assert.Equal(t, 2, ab.Count, "a-b co-change appears in both commits")
}

func TestResolveCochangeIDs_DropsOversizedCommits(t *testing.T) {
	var changes []model.FileChange
	pathToID := make(map[string]int64)
	for i := 0; i < 101; i++ {
		path := "file" + string(rune('A'+i/26)) + string(rune('a'+i%26)) + ".go"
		changes = append(changes, model.FileChange{CommitHash: "huge", Path: path})
		pathToID[path] = int64(i)
	}

	pairs := ResolveCochangeIDs(changes, pathToID)
	assert.Empty(t, pairs, "commits touching more than 100 files are excluded from co-change")
}

func TestCochangeEntropy_ZeroForSingleOrNoPartner(t *testing.T) {
	assert.Equal(t, 0.0, cochangeEntropy(nil))
	assert.Equal(t, 0.0, cochangeEntropy(map[int64]int{2: 5}))
}

func TestCochangeEntropy_HigherForMoreUniformPartners(t *testing.T) {
	skewed := cochangeEntropy(map[int64]int{2: 100, 3: 1})
	uniform := cochangeEntropy(map[int64]int{2: 50, 3: 50})
	assert.Less(t, skewed, uniform)
	assert.InDelta(t, 1.0, uniform, 0.0001)
}

func TestComputeHyperedges_OneEdgePerQualifyingCommit(t *testing.T) {
	changes := []model.FileChange{
		{CommitHash: "c1", Path: "a.go"},
		{CommitHash: "c1", Path: "b.go"},
		{CommitHash: "c2", Path: "a.go"},
	}
	pathToID := map[string]int64{"a.go": 1, "b.go": 2}

	edges, members := computeHyperedges(changes, pathToID)

	require.Len(t, edges, 1, "c2 touches only one tracked file and is dropped")
	assert.Equal(t, "c1", edges[0].CommitHash)
	assert.Equal(t, 2, edges[0].FileCount)
	assert.Len(t, edges[0].SigHash, 16)
	require.Len(t, members, 2)
	assert.Equal(t, 0, members[0].Ordinal)
	assert.Equal(t, 1, members[1].Ordinal)
}

func TestHyperedgeSignature_StableForSameSortedIDs(t *testing.T) {
	a := hyperedgeSignature([]int64{1, 2, 3})
	b := hyperedgeSignature([]int64{1, 2, 3})
	c := hyperedgeSignature([]int64{1, 2, 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestComputeFileStats_CountsChurnAndDistinctAuthors(t *testing.T) {
	changes := []model.FileChange{
		{CommitHash: "c1", Path: "a.go", LinesAdded: 5, LinesRemoved: 2},
		{CommitHash: "c2", Path: "a.go", LinesAdded: 1, LinesRemoved: 1},
	}
	authors := map[string]string{"c1": "Ada", "c2": "Grace"}
	pathToID := map[string]int64{"a.go": 1}

	stats := computeFileStats(changes, nil, authors, pathToID)

	require.Len(t, stats, 1)
	assert.Equal(t, 2, stats[0].CommitCount)
	assert.Equal(t, 9, stats[0].TotalChurn)
	assert.Equal(t, 2, stats[0].DistinctAuthors)
}
