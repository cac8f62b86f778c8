//go:build cgo

// SQLite-backed Store, grounded in
// rohankatakam-coderisk/internal/storage/sqlite.go: sqlx.Connect with
// mattn/go-sqlite3, WAL journal mode, foreign keys on, tx-per-batch writes
// with ON CONFLICT DO UPDATE upserts / INSERT OR IGNORE. The teacher used a graph
// database (onedusk-pd/internal/graph/kuzustore.go) for this concern; we
// swap it for a relational schema per spec §6 while keeping the cgo-gated
// two-implementation split (see memstore.go for the non-cgo twin).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/roam/internal/model"
)

// SQLiteStore is the production Store backend.
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore opens (creating if absent) the database at path.
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: connect sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Table names below match spec §6's literal list (graph_metrics,
// symbol_metrics, clusters, git_commits, git_file_changes, git_cochange,
// git_hyperedges, git_hyperedge_members, snapshots) rather than a
// dialect-of-convenience naming: the store is a queryable contract, and
// table identity is part of that contract.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL UNIQUE,
	language TEXT NOT NULL,
	file_role TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	mtime INTEGER NOT NULL,
	line_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	kind TEXT NOT NULL,
	signature TEXT NOT NULL DEFAULT '',
	line_start INTEGER NOT NULL,
	line_end INTEGER NOT NULL,
	docstring TEXT NOT NULL DEFAULT '',
	visibility TEXT NOT NULL DEFAULT '',
	is_exported INTEGER NOT NULL DEFAULT 0,
	parent_id INTEGER,
	default_value TEXT NOT NULL DEFAULT '',
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE,
	FOREIGN KEY (parent_id) REFERENCES symbols(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_id);
CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);

CREATE TABLE IF NOT EXISTS edges (
	source_symbol_id INTEGER NOT NULL,
	target_symbol_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	line INTEGER NOT NULL,
	PRIMARY KEY (source_symbol_id, target_symbol_id, kind),
	FOREIGN KEY (source_symbol_id) REFERENCES symbols(id) ON DELETE CASCADE,
	FOREIGN KEY (target_symbol_id) REFERENCES symbols(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_symbol_id);
CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_symbol_id);

CREATE TABLE IF NOT EXISTS file_edges (
	source_file_id INTEGER NOT NULL,
	target_file_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	symbol_count INTEGER NOT NULL,
	PRIMARY KEY (source_file_id, target_file_id, kind),
	FOREIGN KEY (source_file_id) REFERENCES files(id) ON DELETE CASCADE,
	FOREIGN KEY (target_file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS graph_metrics (
	symbol_id INTEGER PRIMARY KEY,
	page_rank REAL NOT NULL DEFAULT 0,
	in_degree INTEGER NOT NULL DEFAULT 0,
	out_degree INTEGER NOT NULL DEFAULT 0,
	betweenness REAL NOT NULL DEFAULT 0,
	FOREIGN KEY (symbol_id) REFERENCES symbols(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS symbol_metrics (
	symbol_id INTEGER PRIMARY KEY,
	cognitive_complexity INTEGER NOT NULL DEFAULT 0,
	nesting_depth INTEGER NOT NULL DEFAULT 0,
	param_count INTEGER NOT NULL DEFAULT 0,
	line_count INTEGER NOT NULL DEFAULT 0,
	return_count INTEGER NOT NULL DEFAULT 0,
	bool_op_count INTEGER NOT NULL DEFAULT 0,
	callback_depth INTEGER NOT NULL DEFAULT 0,
	cyclomatic_density REAL NOT NULL DEFAULT 0,
	halstead_volume REAL NOT NULL DEFAULT 0,
	halstead_difficulty REAL NOT NULL DEFAULT 0,
	halstead_effort REAL NOT NULL DEFAULT 0,
	halstead_bugs REAL NOT NULL DEFAULT 0,
	FOREIGN KEY (symbol_id) REFERENCES symbols(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS clusters (
	symbol_id INTEGER PRIMARY KEY,
	cluster_id INTEGER NOT NULL,
	cluster_label TEXT NOT NULL,
	FOREIGN KEY (symbol_id) REFERENCES symbols(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS git_commits (
	hash TEXT PRIMARY KEY,
	author TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	message TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_git_commits_timestamp ON git_commits(timestamp);

CREATE TABLE IF NOT EXISTS git_file_changes (
	commit_hash TEXT NOT NULL,
	file_id INTEGER,
	path TEXT NOT NULL,
	lines_added INTEGER NOT NULL,
	lines_removed INTEGER NOT NULL,
	FOREIGN KEY (commit_hash) REFERENCES git_commits(hash) ON DELETE CASCADE,
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE SET NULL
);
CREATE INDEX IF NOT EXISTS idx_git_file_changes_commit ON git_file_changes(commit_hash);
CREATE INDEX IF NOT EXISTS idx_git_file_changes_file ON git_file_changes(file_id);

CREATE TABLE IF NOT EXISTS git_cochange (
	file_a INTEGER NOT NULL,
	file_b INTEGER NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY (file_a, file_b),
	FOREIGN KEY (file_a) REFERENCES files(id) ON DELETE CASCADE,
	FOREIGN KEY (file_b) REFERENCES files(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS git_hyperedges (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	commit_hash TEXT NOT NULL,
	file_count INTEGER NOT NULL,
	sig_hash TEXT NOT NULL,
	FOREIGN KEY (commit_hash) REFERENCES git_commits(hash) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS git_hyperedge_members (
	hyperedge_id INTEGER NOT NULL,
	file_id INTEGER NOT NULL,
	ordinal INTEGER NOT NULL,
	PRIMARY KEY (hyperedge_id, file_id),
	FOREIGN KEY (hyperedge_id) REFERENCES git_hyperedges(id) ON DELETE CASCADE,
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS file_stats (
	file_id INTEGER PRIMARY KEY,
	commit_count INTEGER NOT NULL DEFAULT 0,
	total_churn INTEGER NOT NULL DEFAULT 0,
	distinct_authors INTEGER NOT NULL DEFAULT 0,
	complexity REAL NOT NULL DEFAULT 0,
	cochange_entropy REAL NOT NULL DEFAULT 0,
	FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
);

-- snapshots records one row per completed index run, so a run's aggregate
-- shape over time is queryable without replaying git history.
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	file_count INTEGER NOT NULL,
	symbol_count INTEGER NOT NULL,
	edge_count INTEGER NOT NULL,
	cluster_count INTEGER NOT NULL,
	commit_count INTEGER NOT NULL
);
`

func (s *SQLiteStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaDDL)
	return err
}

func (s *SQLiteStore) Truncate(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{
		"clusters", "symbol_metrics", "graph_metrics",
		"file_edges", "edges", "symbols", "files",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("store: truncate %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) TruncateGit(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{
		"file_stats", "git_hyperedge_members", "git_hyperedges", "git_cochange", "git_file_changes", "git_commits",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("store: truncate %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) UpsertFile(ctx context.Context, f model.File) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO files (path, language, file_role, content_hash, mtime, line_count)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language, file_role=excluded.file_role,
			content_hash=excluded.content_hash, mtime=excluded.mtime,
			line_count=excluded.line_count`,
		f.Path, f.Language, f.FileRole, f.ContentHash, f.Mtime, f.LineCount)
	if err != nil {
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}
	var id int64
	if err := s.db.GetContext(ctx, &id, `SELECT id FROM files WHERE path = ?`, f.Path); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) DeleteFile(ctx context.Context, path string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	return err
}

func (s *SQLiteStore) GetFileByPath(ctx context.Context, path string) (*model.File, error) {
	var f model.File
	err := s.db.GetContext(ctx, &f, `SELECT id, path, language, file_role, content_hash, mtime, line_count FROM files WHERE path = ?`, path)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (s *SQLiteStore) ListFiles(ctx context.Context) ([]model.File, error) {
	var files []model.File
	err := s.db.SelectContext(ctx, &files, `SELECT id, path, language, file_role, content_hash, mtime, line_count FROM files`)
	return files, err
}

func (s *SQLiteStore) PriorFileState(ctx context.Context) (map[string]PriorFile, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT path, mtime, content_hash FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]PriorFile)
	for rows.Next() {
		var path, hash string
		var mtime int64
		if err := rows.Scan(&path, &mtime, &hash); err != nil {
			return nil, err
		}
		out[path] = PriorFile{Mtime: mtime, ContentHash: hash}
	}
	return out, rows.Err()
}

func (s *SQLiteStore) InsertSymbols(ctx context.Context, syms []model.Symbol) ([]int64, error) {
	if len(syms) == 0 {
		return nil, nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ids := make([]int64, len(syms))
	for i, sym := range syms {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO symbols
			(file_id, name, qualified_name, kind, signature, line_start, line_end,
			 docstring, visibility, is_exported, parent_id, default_value)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sym.FileID, sym.Name, sym.QualifiedName, sym.Kind, sym.Signature,
			sym.LineStart, sym.LineEnd, sym.Docstring, sym.Visibility,
			sym.IsExported, sym.ParentID, sym.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("store: insert symbol %s: %w", sym.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, tx.Commit()
}

func (s *SQLiteStore) SetSymbolParents(ctx context.Context, parents map[int64]int64) error {
	if len(parents) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for symID, parentID := range parents {
		if _, err := tx.ExecContext(ctx, `UPDATE symbols SET parent_id = ? WHERE id = ?`, parentID, symID); err != nil {
			return fmt.Errorf("store: set parent for symbol %d: %w", symID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) SymbolsByFile(ctx context.Context, fileID int64) ([]model.Symbol, error) {
	var syms []model.Symbol
	err := s.db.SelectContext(ctx, &syms, `
		SELECT id, file_id, name, qualified_name, kind, signature, line_start, line_end,
		       docstring, visibility, is_exported, parent_id, default_value
		FROM symbols WHERE file_id = ?`, fileID)
	return syms, err
}

func (s *SQLiteStore) AllSymbols(ctx context.Context) ([]model.Symbol, error) {
	var syms []model.Symbol
	err := s.db.SelectContext(ctx, &syms, `
		SELECT id, file_id, name, qualified_name, kind, signature, line_start, line_end,
		       docstring, visibility, is_exported, parent_id, default_value
		FROM symbols`)
	return syms, err
}

func (s *SQLiteStore) FindSymbolsByName(ctx context.Context, name string) ([]model.Symbol, error) {
	var syms []model.Symbol
	err := s.db.SelectContext(ctx, &syms, `
		SELECT id, file_id, name, qualified_name, kind, signature, line_start, line_end,
		       docstring, visibility, is_exported, parent_id, default_value
		FROM symbols WHERE name = ?`, name)
	return syms, err
}

func (s *SQLiteStore) ReplaceEdges(ctx context.Context, edges []model.Edge) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return err
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO edges (source_symbol_id, target_symbol_id, kind, line)
			VALUES (?, ?, ?, ?)`, e.SourceSymbolID, e.TargetSymbolID, e.Kind, e.Line); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AllEdges(ctx context.Context) ([]model.Edge, error) {
	var edges []model.Edge
	err := s.db.SelectContext(ctx, &edges, `SELECT source_symbol_id, target_symbol_id, kind, line FROM edges`)
	return edges, err
}

func (s *SQLiteStore) ReplaceFileEdges(ctx context.Context, edges []model.FileEdge) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM file_edges`); err != nil {
		return err
	}
	for _, e := range edges {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO file_edges (source_file_id, target_file_id, kind, symbol_count)
			VALUES (?, ?, ?, ?)`, e.SourceFileID, e.TargetFileID, e.Kind, e.SymbolCount); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) AllFileEdges(ctx context.Context) ([]model.FileEdge, error) {
	var edges []model.FileEdge
	err := s.db.SelectContext(ctx, &edges, `SELECT source_file_id, target_file_id, kind, symbol_count FROM file_edges`)
	return edges, err
}

func (s *SQLiteStore) WriteSymbolGraphMetrics(ctx context.Context, metrics []model.SymbolGraphMetric) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, m := range metrics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO graph_metrics (symbol_id, page_rank, in_degree, out_degree, betweenness)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(symbol_id) DO UPDATE SET
				page_rank=excluded.page_rank, in_degree=excluded.in_degree,
				out_degree=excluded.out_degree, betweenness=excluded.betweenness`,
			m.SymbolID, m.PageRank, m.InDegree, m.OutDegree, m.Betweenness); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) WriteSymbolComplexity(ctx context.Context, metrics []model.SymbolComplexityMetric) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, m := range metrics {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO symbol_metrics
			(symbol_id, cognitive_complexity, nesting_depth, param_count, line_count,
			 return_count, bool_op_count, callback_depth, cyclomatic_density,
			 halstead_volume, halstead_difficulty, halstead_effort, halstead_bugs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol_id) DO UPDATE SET
				cognitive_complexity=excluded.cognitive_complexity,
				nesting_depth=excluded.nesting_depth, param_count=excluded.param_count,
				line_count=excluded.line_count, return_count=excluded.return_count,
				bool_op_count=excluded.bool_op_count, callback_depth=excluded.callback_depth,
				cyclomatic_density=excluded.cyclomatic_density, halstead_volume=excluded.halstead_volume,
				halstead_difficulty=excluded.halstead_difficulty, halstead_effort=excluded.halstead_effort,
				halstead_bugs=excluded.halstead_bugs`,
			m.SymbolID, m.CognitiveComplexity, m.NestingDepth, m.ParamCount, m.LineCount,
			m.ReturnCount, m.BoolOpCount, m.CallbackDepth, m.CyclomaticDensity,
			m.HalsteadVolume, m.HalsteadDifficulty, m.HalsteadEffort, m.HalsteadBugs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ComplexityByFile(ctx context.Context) (map[int64]float64, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT s.file_id, AVG(m.cognitive_complexity)
		FROM symbol_metrics m
		JOIN symbols s ON s.id = m.symbol_id
		GROUP BY s.file_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var fileID int64
		var avg float64
		if err := rows.Scan(&fileID, &avg); err != nil {
			return nil, err
		}
		out[fileID] = avg
	}
	return out, rows.Err()
}

func (s *SQLiteStore) WriteClusters(ctx context.Context, assignments []model.ClusterAssignment) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM clusters`); err != nil {
		return err
	}
	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO clusters (symbol_id, cluster_id, cluster_label)
			VALUES (?, ?, ?)`, a.SymbolID, a.ClusterID, a.ClusterLabel); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) InsertCommits(ctx context.Context, commits []model.Commit) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range commits {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO git_commits (hash, author, timestamp, message)
			VALUES (?, ?, ?, ?)`, c.Hash, c.Author, c.Timestamp, c.Message); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) InsertFileChanges(ctx context.Context, changes []model.FileChange) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, c := range changes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO git_file_changes (commit_hash, file_id, path, lines_added, lines_removed)
			VALUES (?, ?, ?, ?, ?)`, c.CommitHash, c.FileID, c.Path, c.LinesAdded, c.LinesRemoved); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReplaceCochange(ctx context.Context, pairs []model.Cochange) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM git_cochange`); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO git_cochange (file_a, file_b, count) VALUES (?, ?, ?)`,
			p.FileA, p.FileB, p.Count); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ReplaceHyperedges(ctx context.Context, edges []model.Hyperedge, members []model.HyperedgeMember) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM git_hyperedge_members`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM git_hyperedges`); err != nil {
		return err
	}

	idByCommit := make(map[string]int64, len(edges))
	for _, e := range edges {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO git_hyperedges (commit_hash, file_count, sig_hash) VALUES (?, ?, ?)`,
			e.CommitHash, e.FileCount, e.SigHash)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		idByCommit[e.CommitHash] = id
	}

	for _, m := range members {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO git_hyperedge_members (hyperedge_id, file_id, ordinal) VALUES (?, ?, ?)`,
			m.HyperedgeID, m.FileID, m.Ordinal); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) WriteFileStats(ctx context.Context, stats []model.FileStats) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, st := range stats {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO file_stats (file_id, commit_count, total_churn, distinct_authors, complexity, cochange_entropy)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(file_id) DO UPDATE SET
				commit_count=excluded.commit_count, total_churn=excluded.total_churn,
				distinct_authors=excluded.distinct_authors, complexity=excluded.complexity,
				cochange_entropy=excluded.cochange_entropy`,
			st.FileID, st.CommitCount, st.TotalChurn, st.DistinctAuthors, st.Complexity, st.CochangeEntropy); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecordSnapshot(ctx context.Context, runID string, createdAt int64) error {
	st, err := s.Stats(ctx)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, created_at, file_count, symbol_count, edge_count, cluster_count, commit_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, createdAt, st.FileCount, st.SymbolCount, st.EdgeCount, st.ClusterCount, st.CommitCount)
	return err
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.GetContext(ctx, &st.FileCount, `SELECT COUNT(*) FROM files`); err != nil {
		return st, err
	}
	if err := s.db.GetContext(ctx, &st.SymbolCount, `SELECT COUNT(*) FROM symbols`); err != nil {
		return st, err
	}
	if err := s.db.GetContext(ctx, &st.EdgeCount, `SELECT COUNT(*) FROM edges`); err != nil {
		return st, err
	}
	if err := s.db.GetContext(ctx, &st.ClusterCount, `SELECT COUNT(DISTINCT cluster_id) FROM clusters`); err != nil {
		return st, err
	}
	if err := s.db.GetContext(ctx, &st.CommitCount, `SELECT COUNT(*) FROM git_commits`); err != nil {
		return st, err
	}
	return st, nil
}

var _ Store = (*SQLiteStore)(nil)
