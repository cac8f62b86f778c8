// Package gitminer implements spec component C8: mining commit history for
// co-change statistics, commit hyperedges, and per-file churn. Grounded in
// rohankatakam-coderisk/internal/git/history.go's subprocess style
// (exec.CommandContext with cmd.Dir, *exec.ExitError stderr extraction).
package gitminer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dusk-indust/roam/internal/model"
)

const maxCommits = 5000

// commitPrefix tags the one-line-per-commit header row within git log's
// mixed commit/numstat output so the two can be told apart while scanning.
const commitPrefix = "COMMIT:"

// Mine runs `git log --numstat` against repoRoot and returns the parsed
// commits, file changes, co-change pairs, hyperedges, and per-file stats.
// pathToFileID resolves a repo-relative path to its known file id; changes
// touching untracked paths are kept in FileChanges but excluded from the
// id-addressed aggregates.
func Mine(ctx context.Context, repoRoot string, pathToFileID map[string]int64) (Result, error) {
	out, err := runLog(ctx, repoRoot)
	if err != nil {
		return Result{}, fmt.Errorf("gitminer: %w", err)
	}

	commits, changes := parseLog(out)
	authorByCommit := make(map[string]string, len(commits))
	for _, c := range commits {
		authorByCommit[c.Hash] = c.Author
	}

	cochange := ResolveCochangeIDs(changes, pathToFileID)
	hyperedges, members := computeHyperedges(changes, pathToFileID)
	stats := computeFileStats(changes, cochange, authorByCommit, pathToFileID)

	for i := range changes {
		if id, ok := pathToFileID[changes[i].Path]; ok {
			changes[i].FileID = &id
		}
	}

	return Result{
		Commits:      commits,
		FileChanges:  changes,
		Cochange:     cochange,
		Hyperedges:   hyperedges,
		HyperMembers: members,
		FileStats:    stats,
	}, nil
}

// Result is everything one mining pass produces.
type Result struct {
	Commits      []model.Commit
	FileChanges  []model.FileChange
	Cochange     []model.Cochange
	Hyperedges   []model.Hyperedge
	HyperMembers []model.HyperedgeMember
	FileStats    []model.FileStats
}

func runLog(ctx context.Context, repoRoot string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		"--numstat", "--no-merges",
		"--pretty=format:"+commitPrefix+"%H|%an|%at|%s",
		"-n", strconv.Itoa(maxCommits),
	)
	cmd.Dir = repoRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("git log failed: %s", strings.TrimSpace(stderr.String()+" "+string(exitErr.Stderr)))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func parseLog(raw []byte) ([]model.Commit, []model.FileChange) {
	lines := strings.Split(string(raw), "\n")

	var commits []model.Commit
	var changes []model.FileChange
	var current *model.Commit

	for _, line := range lines {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, commitPrefix) {
			parts := strings.SplitN(strings.TrimPrefix(line, commitPrefix), "|", 4)
			if len(parts) != 4 {
				continue
			}
			ts, _ := strconv.ParseInt(parts[2], 10, 64)
			commits = append(commits, model.Commit{Hash: parts[0], Author: parts[1], Timestamp: ts, Message: parts[3]})
			current = &commits[len(commits)-1]
			continue
		}

		if current == nil {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			continue
		}
		path := normalizeRename(fields[2])
		if path == "" {
			continue
		}
		changes = append(changes, model.FileChange{
			CommitHash:   current.Hash,
			Path:         path,
			LinesAdded:   parseNumstat(fields[0]),
			LinesRemoved: parseNumstat(fields[1]),
		})
	}
	return commits, changes
}

func parseNumstat(field string) int {
	if field == "-" {
		return 0 // binary file, numstat reports "-"
	}
	n, _ := strconv.Atoi(field)
	return n
}

// normalizeRename reduces numstat's "{old => new}" rename notation (and
// its simple "old => new" form for cross-directory renames) to the new path.
func normalizeRename(path string) string {
	idx := strings.Index(path, "=>")
	if idx == -1 {
		return path
	}
	braceStart := strings.LastIndex(path[:idx], "{")
	if braceStart == -1 {
		return strings.TrimSpace(path[idx+2:])
	}
	braceEnd := strings.Index(path[idx:], "}")
	if braceEnd == -1 {
		return strings.TrimSpace(path[idx+2:])
	}
	prefix := path[:braceStart]
	suffix := path[idx+braceEnd+1:]
	newPart := strings.TrimSpace(path[idx+2 : idx+braceEnd])
	return prefix + newPart + suffix
}

// ResolveCochangeIDs aggregates unordered file-id pairs (a < b) for each
// commit touching 2-100 tracked files, per spec §4.8.
func ResolveCochangeIDs(changes []model.FileChange, pathToFileID map[string]int64) []model.Cochange {
	byCommit := groupByCommit(changes)
	counts := make(map[[2]int64]int)

	for _, files := range byCommit {
		ids := uniqueFileIDs(files, pathToFileID)
		if len(ids) < 2 || len(ids) > 100 {
			continue
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				counts[[2]int64{ids[i], ids[j]}]++
			}
		}
	}

	out := make([]model.Cochange, 0, len(counts))
	for k, n := range counts {
		out = append(out, model.Cochange{FileA: k[0], FileB: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FileA != out[j].FileA {
			return out[i].FileA < out[j].FileA
		}
		return out[i].FileB < out[j].FileB
	})
	return out
}

func computeHyperedges(changes []model.FileChange, pathToFileID map[string]int64) ([]model.Hyperedge, []model.HyperedgeMember) {
	byCommit := groupByCommit(changes)
	hashes := make([]string, 0, len(byCommit))
	for h := range byCommit {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	var edges []model.Hyperedge
	var members []model.HyperedgeMember

	for _, commitHash := range hashes {
		ids := uniqueFileIDs(byCommit[commitHash], pathToFileID)
		if len(ids) < 2 || len(ids) > 100 {
			continue
		}
		edges = append(edges, model.Hyperedge{
			CommitHash: commitHash,
			FileCount:  len(ids),
			SigHash:    hyperedgeSignature(ids),
		})
		for ord, id := range ids {
			members = append(members, model.HyperedgeMember{FileID: id, Ordinal: ord})
		}
	}
	return edges, members
}

func hyperedgeSignature(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

func computeFileStats(changes []model.FileChange, cochange []model.Cochange, authorByCommit map[string]string, pathToFileID map[string]int64) []model.FileStats {
	type acc struct {
		commits int
		churn   int
		authors map[string]bool
	}
	byFile := make(map[int64]*acc)

	for _, ch := range changes {
		id, ok := pathToFileID[ch.Path]
		if !ok {
			continue
		}
		a, exists := byFile[id]
		if !exists {
			a = &acc{authors: make(map[string]bool)}
			byFile[id] = a
		}
		a.commits++
		a.churn += ch.LinesAdded + ch.LinesRemoved
		if author := authorByCommit[ch.CommitHash]; author != "" {
			a.authors[author] = true
		}
	}

	partners := make(map[int64]map[int64]int)
	for _, c := range cochange {
		if partners[c.FileA] == nil {
			partners[c.FileA] = make(map[int64]int)
		}
		if partners[c.FileB] == nil {
			partners[c.FileB] = make(map[int64]int)
		}
		partners[c.FileA][c.FileB] = c.Count
		partners[c.FileB][c.FileA] = c.Count
	}

	out := make([]model.FileStats, 0, len(byFile))
	for id, a := range byFile {
		out = append(out, model.FileStats{
			FileID:          id,
			CommitCount:     a.commits,
			TotalChurn:      a.churn,
			DistinctAuthors: len(a.authors),
			CochangeEntropy: cochangeEntropy(partners[id]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out
}

// cochangeEntropy implements spec §4.8's normalized entropy: H =
// -log2(Σ p_i²) over the partner multiset, normalized by log2(|partners|);
// files with ≤1 partner get 0.
func cochangeEntropy(partnerCounts map[int64]int) float64 {
	if len(partnerCounts) <= 1 {
		return 0
	}
	total := 0
	for _, c := range partnerCounts {
		total += c
	}
	if total == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range partnerCounts {
		p := float64(c) / float64(total)
		sumSq += p * p
	}
	h := -math.Log2(sumSq)
	norm := math.Log2(float64(len(partnerCounts)))
	if norm == 0 {
		return 0
	}
	return h / norm
}

func groupByCommit(changes []model.FileChange) map[string][]model.FileChange {
	out := make(map[string][]model.FileChange)
	for _, c := range changes {
		out[c.CommitHash] = append(out[c.CommitHash], c)
	}
	return out
}

// uniqueFileIDs resolves a commit's touched paths to distinct tracked file
// ids, sorted ascending so downstream pairing/signature logic is
// deterministic.
func uniqueFileIDs(changes []model.FileChange, pathToFileID map[string]int64) []int64 {
	seen := make(map[int64]bool, len(changes))
	var out []int64
	for _, c := range changes {
		id, ok := pathToFileID[c.Path]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
