// Package indexer implements spec component C11: orchestrating discovery,
// change detection, parsing/extraction, complexity analysis, reference
// resolution, graph construction, analytics, and git mining under a
// cooperative advisory lock. Stage ordering and the lock-file-with-PID
// idiom are generic pipeline patterns (spec §4.11/§5), not copied from
// one teacher file.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/dusk-indust/roam/internal/analytics"
	"github.com/dusk-indust/roam/internal/change"
	"github.com/dusk-indust/roam/internal/complexity"
	"github.com/dusk-indust/roam/internal/discovery"
	"github.com/dusk-indust/roam/internal/errs"
	"github.com/dusk-indust/roam/internal/gitminer"
	"github.com/dusk-indust/roam/internal/graphbuild"
	"github.com/dusk-indust/roam/internal/model"
	"github.com/dusk-indust/roam/internal/parser"
	"github.com/dusk-indust/roam/internal/resolve"
	"github.com/dusk-indust/roam/internal/store"
)

// Options controls one indexing run.
type Options struct {
	Force   bool // truncate and fully rebuild, ignoring prior file state
	Verbose bool
}

// Pipeline wires every component together against one repository root and
// one store backend.
type Pipeline struct {
	root   string
	prefix string // workspace alias; "" outside workspace mode
	st     store.Store
	coord  *parser.Coordinator
	logger *logrus.Logger
}

// New builds a Pipeline for a single repository, not part of a workspace.
// A nil logger falls back to logrus's standard logger, matching the
// teacher's CLI convention of a package-level default.
func New(root string, st store.Store, logger *logrus.Logger) *Pipeline {
	return NewWithPrefix(root, "", st, logger)
}

// NewWithPrefix builds a Pipeline for one repository within a workspace
// (spec §4.11): every path this repo persists is stored as
// "<prefix>/<relpath>" so multiple repos can share one store's symbol and
// edge tables without path collisions, while discovery, change detection,
// and git mining still operate on root-relative paths against this repo's
// own checkout.
func NewWithPrefix(root, prefix string, st store.Store, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{root: root, prefix: prefix, st: st, coord: parser.NewCoordinator(), logger: logger}
}

// logical maps a root-relative path to the path persisted in the store:
// itself outside workspace mode, or "<prefix>/<rel>" inside it.
func (p *Pipeline) logical(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return p.prefix + "/" + rel
}

// stripPrefix is logical's inverse: it recovers a root-relative path from
// a persisted path, reporting false if the persisted path belongs to a
// different repo's prefix (or this pipeline isn't prefixed at all).
func (p *Pipeline) stripPrefix(persisted string) (string, bool) {
	if p.prefix == "" {
		return persisted, true
	}
	pfx := p.prefix + "/"
	if !strings.HasPrefix(persisted, pfx) {
		return "", false
	}
	return strings.TrimPrefix(persisted, pfx), true
}

// Run executes one full indexing pass under the advisory lock.
func (p *Pipeline) Run(ctx context.Context) error {
	return p.run(ctx, Options{})
}

// RunWithOptions is Run with explicit flags (the --force/--verbose path
// cmd/roam wires up).
func (p *Pipeline) RunWithOptions(ctx context.Context, opts Options) error {
	return p.run(ctx, opts)
}

func (p *Pipeline) run(ctx context.Context, opts Options) error {
	runID := uuid.New().String()
	log := p.logger.WithField("run_id", runID)
	log.Debug("starting index run")

	release, err := acquireLock(p.root)
	if err != nil {
		return fmt.Errorf("indexer: %w", err)
	}
	defer release()

	if err := p.st.InitSchema(ctx); err != nil {
		return fmt.Errorf("indexer: init schema: %w", err)
	}
	if opts.Force {
		// --force rebuilds file/symbol/edge/metric/cluster content only;
		// git tables are mined independently and are not truncated here
		// (see Store.Truncate for the file-keyed rows SQLite cascades).
		if err := p.st.Truncate(ctx); err != nil {
			return fmt.Errorf("indexer: truncate: %w", err)
		}
	}

	discovered, err := discovery.Discover(ctx, p.root)
	if err != nil {
		return fmt.Errorf("indexer: discovery: %w", err)
	}

	priorRaw, err := p.st.PriorFileState(ctx)
	if err != nil {
		return fmt.Errorf("indexer: prior file state: %w", err)
	}
	// PriorFileState spans every repo sharing this store in workspace mode;
	// keep only this repo's own entries and reduce them back to root-relative
	// paths before handing them to change.Detect, which compares against
	// discovery's root-relative output.
	prior := make(map[string]change.Prior, len(priorRaw))
	for path, pf := range priorRaw {
		rel, ok := p.stripPrefix(path)
		if !ok {
			continue
		}
		prior[rel] = change.Prior{Mtime: pf.Mtime, ContentHash: pf.ContentHash}
	}

	changeSet, err := change.Detect(p.root, discovered, prior)
	if err != nil {
		return fmt.Errorf("indexer: change detection: %w", err)
	}

	summary := errs.NewSummary()

	for _, path := range changeSet.Removed {
		if err := p.st.DeleteFile(ctx, p.logical(path)); err != nil {
			summary.Record(errs.KindStoreConstraint)
			p.logger.WithError(err).Warnf("indexer: deleting %s", path)
		}
	}

	toParse := make([]string, 0, len(changeSet.Added)+len(changeSet.Modified))
	toParse = append(toParse, changeSet.Added...)
	toParse = append(toParse, changeSet.Modified...)
	sort.Strings(toParse)

	results := p.coord.ParseAll(ctx, p.root, toParse, summary)

	var allRefs []model.Reference
	for _, fr := range results {
		if fr.Result == nil {
			continue
		}
		if err := p.ingestFile(ctx, fr, summary, &allRefs); err != nil {
			summary.Record(errs.KindStoreConstraint)
			p.logger.WithError(err).Warnf("indexer: ingesting %s", fr.Path)
		}
	}

	// ReplaceEdges below is a full delete-and-reinsert, so every run must
	// resupply references from the whole tree, not just changed files.
	// Unchanged files keep their stored symbol/complexity rows but still
	// need their references re-extracted for this run's resolution pass.
	if len(changeSet.Unchanged) > 0 {
		unchanged := append([]string(nil), changeSet.Unchanged...)
		sort.Strings(unchanged)
		for _, fr := range p.coord.ParseAll(ctx, p.root, unchanged, summary) {
			if fr.Result == nil {
				continue
			}
			for _, ref := range fr.Result.Refs {
				ref.SourceFile = p.logical(fr.Path)
				allRefs = append(allRefs, ref)
			}
		}
	}

	allFiles, err := p.st.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("indexer: list files: %w", err)
	}
	pathToFileID := make(map[string]int64, len(allFiles))
	filesByID := make(map[int64]model.File, len(allFiles))
	for _, f := range allFiles {
		pathToFileID[f.Path] = f.ID
		filesByID[f.ID] = f
	}

	allSymbols, err := p.st.AllSymbols(ctx)
	if err != nil {
		return fmt.Errorf("indexer: list symbols: %w", err)
	}

	resolver := resolve.NewResolver(allFiles, allSymbols)
	edges := resolver.ResolveAll(allRefs, pathToFileID)
	if err := p.st.ReplaceEdges(ctx, edges); err != nil {
		return fmt.Errorf("indexer: replace edges: %w", err)
	}

	fileOfSymbol := make(map[int64]int64, len(allSymbols))
	for _, s := range allSymbols {
		fileOfSymbol[s.ID] = s.FileID
	}
	fileEdges := resolve.BuildFileEdges(edges, fileOfSymbol)
	if err := p.st.ReplaceFileEdges(ctx, fileEdges); err != nil {
		return fmt.Errorf("indexer: replace file edges: %w", err)
	}

	symGraph := graphbuild.BuildSymbolGraph(allSymbols, filesByID, edges)
	fileGraph := graphbuild.BuildFileGraph(allFiles, fileEdges)
	log.Debugf("graph build: %d symbol nodes, %d file nodes", len(symGraph.Nodes), len(fileGraph.Nodes))

	if err := p.runAnalytics(ctx, allSymbols, filesByID, symGraph); err != nil {
		summary.Record(errs.KindStoreConstraint)
		log.WithError(err).Warn("indexer: analytics")
	}

	// git log over p.root yields root-relative paths for this repo alone,
	// so gitminer needs an unprefixed view of pathToFileID even though the
	// map driving symbol resolution above is the prefixed, cross-repo one.
	gitPathToFileID := pathToFileID
	if p.prefix != "" {
		gitPathToFileID = make(map[string]int64, len(allFiles))
		for path, id := range pathToFileID {
			if rel, ok := p.stripPrefix(path); ok {
				gitPathToFileID[rel] = id
			}
		}
	}

	if res, err := gitminer.Mine(ctx, p.root, gitPathToFileID); err != nil {
		summary.Record(errs.KindGitFailure)
		log.WithError(err).Warn("indexer: git mining skipped (not a git checkout, or git unavailable)")
	} else {
		for i := range res.FileChanges {
			res.FileChanges[i].Path = p.logical(res.FileChanges[i].Path)
		}
		if err := p.writeGitResult(ctx, res); err != nil {
			summary.Record(errs.KindStoreConstraint)
			log.WithError(err).Warn("indexer: writing git tables")
		}
	}

	if err := p.st.RecordSnapshot(ctx, runID, time.Now().Unix()); err != nil {
		log.WithError(err).Warn("indexer: recording snapshot")
	}

	log.Infof(
		"index complete: %d discovered, +%d ~%d -%d; %s",
		len(discovered), len(changeSet.Added), len(changeSet.Modified), len(changeSet.Removed), summary.String(),
	)
	return nil
}

// ingestFile upserts one parsed file's row, inserts its symbols (linking
// ParentName to a sibling's real id once ids are known), computes
// per-symbol complexity, and appends its references to refs for the
// batch-wide resolution pass that follows once every file is ingested.
func (p *Pipeline) ingestFile(ctx context.Context, fr parser.FileResult, summary *errs.Summary, refs *[]model.Reference) error {
	abs := filepath.Join(p.root, fr.Path)
	info, err := os.Stat(abs)
	if err != nil {
		summary.Record(errs.KindUnreadableSource)
		return err
	}
	hash, err := change.HashFile(p.root, fr.Path)
	if err != nil {
		summary.Record(errs.KindUnreadableSource)
		return err
	}

	file := model.File{
		Path:        p.logical(fr.Path),
		Language:    fr.Result.Lang,
		FileRole:    fileRoleFor(fr.Path),
		ContentHash: hash,
		Mtime:       info.ModTime().Unix(),
		LineCount:   fr.Result.LOC,
	}
	fileID, err := p.st.UpsertFile(ctx, file)
	if err != nil {
		return err
	}

	syms := fr.Result.Symbols
	for i := range syms {
		syms[i].FileID = fileID
	}

	var ids []int64
	if len(syms) > 0 {
		ids, err = p.st.InsertSymbols(ctx, syms)
		if err != nil {
			return err
		}

		nameToID := make(map[string]int64, len(syms))
		for i, s := range syms {
			nameToID[s.Name] = ids[i]
		}
		parents := make(map[int64]int64)
		for i, s := range syms {
			if s.ParentName == "" {
				continue
			}
			if pid, ok := nameToID[s.ParentName]; ok {
				parents[ids[i]] = pid
			}
		}
		if len(parents) > 0 {
			if err := p.st.SetSymbolParents(ctx, parents); err != nil {
				return err
			}
		}

		source, err := os.ReadFile(abs)
		if err == nil {
			p.writeComplexity(ctx, fr, source, ids, syms, summary)
		}
	}

	for _, ref := range fr.Result.Refs {
		ref.SourceFile = p.logical(fr.Path)
		*refs = append(*refs, ref)
	}
	return nil
}

// writeComplexity walks each symbol's AST subtree (re-parsed once per
// file, not per symbol) via internal/complexity, falling back to the
// degraded source-only estimator for embedded-script hosts and any
// symbol whose node can't be located within tolerance.
func (p *Pipeline) writeComplexity(ctx context.Context, fr parser.FileResult, source []byte, ids []int64, syms []model.Symbol, summary *errs.Summary) {
	var root *tree_sitter.Node
	if !parser.IsHostForEmbeddedScripts(fr.Path) && fr.Result.Lang != model.LangUnknown {
		n, closer, err := p.coord.ParseTree(source, fr.Result.Lang)
		if err != nil {
			summary.Record(errs.KindParseError)
		} else {
			root = n
			defer closer()
		}
	}

	lines := strings.Split(string(source), "\n")
	metrics := make([]model.SymbolComplexityMetric, 0, len(syms))
	for i, s := range syms {
		var m complexity.Metrics
		found := false
		if root != nil {
			if node := complexity.FindNode(root, s.LineStart, s.LineEnd); node != nil {
				m = complexity.Walk(node, source, s.LineStart, s.LineEnd)
				found = true
			}
		}
		if !found {
			m = complexity.EstimateDegraded(sliceLines(lines, s.LineStart, s.LineEnd))
		}
		d := complexity.Derive(m)
		metrics = append(metrics, model.SymbolComplexityMetric{
			SymbolID:             ids[i],
			CognitiveComplexity:  m.CognitiveComplexity,
			NestingDepth:         m.NestingDepth,
			ParamCount:           m.ParamCount,
			LineCount:            m.LineCount,
			ReturnCount:          m.ReturnCount,
			BoolOpCount:          m.BoolOpCount,
			CallbackDepth:        m.CallbackDepth,
			CyclomaticDensity:    d.CyclomaticDensity,
			HalsteadVolume:       d.HalsteadVolume,
			HalsteadDifficulty:   d.HalsteadDifficulty,
			HalsteadEffort:       d.HalsteadEffort,
			HalsteadBugs:         d.HalsteadBugs,
		})
	}
	if len(metrics) > 0 {
		if err := p.st.WriteSymbolComplexity(ctx, metrics); err != nil {
			summary.Record(errs.KindStoreConstraint)
		}
	}
}

func sliceLines(lines []string, start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil
	}
	return lines[start-1 : end]
}

// runAnalytics runs the full C10 suite over the materialized symbol graph
// and persists derived metrics and cluster assignments.
func (p *Pipeline) runAnalytics(ctx context.Context, symbols []model.Symbol, filesByID map[int64]model.File, symGraph *graphbuild.SymbolGraph) error {
	nodeIDs := make([]int64, 0, len(symGraph.Nodes))
	for id := range symGraph.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	var aEdges []analytics.Edge
	for _, outEdges := range symGraph.Out {
		for _, e := range outEdges {
			aEdges = append(aEdges, analytics.Edge{From: e.Source, To: e.Target, Weight: 1})
		}
	}
	g := analytics.NewGraph(nodeIDs, aEdges)

	sccs := analytics.Tarjan(g)
	pr := analytics.PageRank(g, sccs)
	bc := analytics.Betweenness(g)
	community := analytics.Louvain(g)

	graphMetrics := make([]model.SymbolGraphMetric, len(symbols))
	for i, s := range symbols {
		graphMetrics[i] = model.SymbolGraphMetric{
			SymbolID:    s.ID,
			PageRank:    pr[s.ID],
			InDegree:    len(g.In[s.ID]),
			OutDegree:   len(g.Out[s.ID]),
			Betweenness: bc[s.ID],
		}
	}
	if err := p.st.WriteSymbolGraphMetrics(ctx, graphMetrics); err != nil {
		return err
	}

	membersByCluster := make(map[int][]analytics.ClusterMember)
	for _, s := range symbols {
		cid, ok := community[s.ID]
		if !ok {
			continue
		}
		dir := filepath.Dir(filesByID[s.FileID].Path)
		membersByCluster[cid] = append(membersByCluster[cid], analytics.ClusterMember{
			SymbolID: s.ID,
			Name:     s.Name,
			IsAnchor: isAnchorKind(s.Kind),
			Dir:      dir,
			PageRank: pr[s.ID],
		})
	}
	labels := analytics.LabelClusters(membersByCluster)
	labelByCluster := make(map[int]string, len(labels))
	for _, l := range labels {
		labelByCluster[l.ClusterID] = l.Label
	}

	assignments := make([]model.ClusterAssignment, 0, len(symbols))
	for _, s := range symbols {
		cid, ok := community[s.ID]
		if !ok {
			continue
		}
		assignments = append(assignments, model.ClusterAssignment{
			SymbolID:     s.ID,
			ClusterID:    cid,
			ClusterLabel: labelByCluster[cid],
		})
	}
	return p.st.WriteClusters(ctx, assignments)
}

func (p *Pipeline) writeGitResult(ctx context.Context, res gitminer.Result) error {
	if err := p.st.InsertCommits(ctx, res.Commits); err != nil {
		return err
	}
	if err := p.st.InsertFileChanges(ctx, res.FileChanges); err != nil {
		return err
	}
	if err := p.st.ReplaceCochange(ctx, res.Cochange); err != nil {
		return err
	}
	if err := p.st.ReplaceHyperedges(ctx, res.Hyperedges, res.HyperMembers); err != nil {
		return err
	}

	// complexity is derived from the persisted symbol_metrics table (not a
	// per-run transient map) so files untouched this run still carry a
	// figure into file_stats instead of being left at zero.
	byFile, err := p.st.ComplexityByFile(ctx)
	if err != nil {
		return err
	}
	for i := range res.FileStats {
		res.FileStats[i].Complexity = byFile[res.FileStats[i].FileID]
	}

	p.flagChurnAnomalies(res.FileStats)
	p.flagChurnTrends(res.Commits, res.FileChanges)

	return p.st.WriteFileStats(ctx, res.FileStats)
}

// flagChurnAnomalies runs a modified z-score pass over the batch's total
// churn figures and logs any file whose churn is a statistical outlier
// relative to its peers, the enrichment spec.md §8 scenario 5 describes.
func (p *Pipeline) flagChurnAnomalies(stats []model.FileStats) {
	if len(stats) < 3 {
		return
	}
	churn := make([]float64, len(stats))
	for i, fs := range stats {
		churn[i] = float64(fs.TotalChurn)
	}
	for _, a := range analytics.ModifiedZScore(churn, analytics.AnomalyThreshold) {
		p.logger.WithField("file_id", stats[a.Index].FileID).
			Warnf("indexer: churn anomaly (modified z-score %.2f)", a.Score)
	}
}

// flagChurnTrends builds each file's commit-ordered per-commit churn
// series and runs Mann-Kendall over it, logging files whose churn shows a
// statistically significant monotonic trend (spec.md §8 scenario 6).
func (p *Pipeline) flagChurnTrends(commits []model.Commit, changes []model.FileChange) {
	order := make(map[string]int64, len(commits))
	for _, c := range commits {
		order[c.Hash] = c.Timestamp
	}

	type point struct {
		ts    int64
		churn int
	}
	series := make(map[string][]point)
	for _, ch := range changes {
		series[ch.Path] = append(series[ch.Path], point{ts: order[ch.CommitHash], churn: ch.LinesAdded + ch.LinesRemoved})
	}

	for path, pts := range series {
		if len(pts) < 6 {
			continue
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].ts < pts[j].ts })
		vals := make([]float64, len(pts))
		for i, pt := range pts {
			vals[i] = float64(pt.churn)
		}
		result := analytics.MannKendall(vals)
		if result.Trend == analytics.TrendNone {
			continue
		}
		p.logger.WithField("path", path).Infof(
			"indexer: churn trend %s (tau=%.2f, p=%.3f)", result.Trend, result.Tau, result.P,
		)
	}
}

var anchorKinds = map[model.SymbolKind]bool{
	model.SymbolClass:     true,
	model.SymbolStruct:    true,
	model.SymbolInterface: true,
	model.SymbolEnum:      true,
	model.SymbolTrait:     true,
	model.SymbolModule:    true,
}

func isAnchorKind(k model.SymbolKind) bool { return anchorKinds[k] }

// fileRoleFor classifies a path into spec §3's file_role enum by cheap
// name-based heuristics; unmatched paths default to source.
func fileRoleFor(path string) model.FileRole {
	lower := strings.ToLower(path)
	base := filepath.Base(lower)
	ext := filepath.Ext(lower)

	switch {
	case strings.Contains(lower, "_test.") || strings.Contains(lower, "/test/") ||
		strings.Contains(lower, "/tests/") || strings.HasPrefix(base, "test_"):
		return model.RoleTest
	case strings.Contains(base, ".pb.go") || strings.Contains(base, "_generated.") ||
		strings.Contains(base, ".generated."):
		return model.RoleGenerated
	case ext == ".md" || ext == ".mdx" || ext == ".rst" || ext == ".txt":
		return model.RoleDoc
	case ext == ".yml" || ext == ".yaml" || ext == ".json" || ext == ".toml" ||
		ext == ".ini" || ext == ".cfg":
		return model.RoleConfig
	default:
		return model.RoleSource
	}
}
