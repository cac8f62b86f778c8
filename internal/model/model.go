// Package model defines the persisted entity types shared by every stage of
// the indexing-and-analysis pipeline (spec component C6's schema, mirrored
// in Go structs so callers never marshal raw SQL rows by hand).
package model

// Language identifies the grammar used to parse a file.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangUnknown    Language = "unknown"
)

// SupportedLanguages are the Tier-1 languages with full symbol/reference
// extraction, complexity analysis, and reference resolution.
var SupportedLanguages = []Language{LangGo, LangTypeScript, LangPython, LangRust}

// FileRole classifies the purpose of a discovered file.
type FileRole string

const (
	RoleSource    FileRole = "source"
	RoleTest      FileRole = "test"
	RoleConfig    FileRole = "config"
	RoleDoc       FileRole = "doc"
	RoleGenerated FileRole = "generated"
)

// SymbolKind enumerates the kinds of named entities extractors can produce.
type SymbolKind string

const (
	SymbolFunction  SymbolKind = "function"
	SymbolMethod    SymbolKind = "method"
	SymbolClass     SymbolKind = "class"
	SymbolStruct    SymbolKind = "struct"
	SymbolInterface SymbolKind = "interface"
	SymbolEnum      SymbolKind = "enum"
	SymbolTrait     SymbolKind = "trait"
	SymbolModule    SymbolKind = "module"
	SymbolConstant  SymbolKind = "constant"
	SymbolVariable  SymbolKind = "variable"
	SymbolProperty  SymbolKind = "property"
)

// CallableKinds are symbol kinds that can be the target of a call/uses edge.
var CallableKinds = map[SymbolKind]bool{
	SymbolFunction: true,
	SymbolMethod:   true,
}

// EdgeKind enumerates the kinds of resolved reference edges.
type EdgeKind string

const (
	EdgeCall        EdgeKind = "call"
	EdgeUses        EdgeKind = "uses"
	EdgeInherits    EdgeKind = "inherits"
	EdgeImplements  EdgeKind = "implements"
	EdgeUsesTrait   EdgeKind = "uses_trait"
	EdgeTemplate    EdgeKind = "template"
	EdgeImport      EdgeKind = "import"
	EdgeReference   EdgeKind = "reference"
	EdgeTemplateRef EdgeKind = "template-ref"
)

// FileEdgeKind enumerates the two aggregate kinds a FileEdge can have.
type FileEdgeKind string

const (
	FileEdgeImports FileEdgeKind = "imports"
	FileEdgeUses    FileEdgeKind = "uses"
)

// File is a persisted source file row.
type File struct {
	ID          int64    `db:"id"`
	Path        string   `db:"path"` // forward-slash, repo- or workspace-relative
	Language    Language `db:"language"`
	FileRole    FileRole `db:"file_role"`
	ContentHash string   `db:"content_hash"` // hex SHA-256
	Mtime       int64    `db:"mtime"`        // unix seconds
	LineCount   int      `db:"line_count"`
}

// Symbol is a persisted named entity row.
type Symbol struct {
	ID            int64      `db:"id"`
	FileID        int64      `db:"file_id"`
	Name          string     `db:"name"`
	QualifiedName string     `db:"qualified_name"`
	Kind          SymbolKind `db:"kind"`
	Signature     string     `db:"signature"`
	LineStart     int        `db:"line_start"`
	LineEnd       int        `db:"line_end"`
	Docstring     string     `db:"docstring"`
	Visibility    string     `db:"visibility"`
	IsExported    bool       `db:"is_exported"`
	ParentID      *int64     `db:"parent_id"`
	DefaultValue  string     `db:"default_value"`

	// ParentName is a transient, extractor-assigned hint (e.g. a method's
	// receiver type name) resolved to ParentID by the indexer (through
	// Store.SetSymbolParents) once every symbol in the file has an id.
	// Never persisted.
	ParentName string `db:"-"`
}

// Edge is a persisted, resolved reference between two symbols.
type Edge struct {
	SourceSymbolID int64    `db:"source_symbol_id"`
	TargetSymbolID int64    `db:"target_symbol_id"`
	Kind           EdgeKind `db:"kind"`
	Line           int      `db:"line"`
}

// FileEdge is an aggregation of symbol edges crossing two files.
type FileEdge struct {
	SourceFileID int64        `db:"source_file_id"`
	TargetFileID int64        `db:"target_file_id"`
	Kind         FileEdgeKind `db:"kind"`
	SymbolCount  int          `db:"symbol_count"`
}

// SymbolGraphMetric holds graph-analytics-derived centrality scores.
type SymbolGraphMetric struct {
	SymbolID    int64   `db:"symbol_id"`
	PageRank    float64 `db:"page_rank"`
	InDegree    int     `db:"in_degree"`
	OutDegree   int     `db:"out_degree"`
	Betweenness float64 `db:"betweenness"`
}

// SymbolComplexityMetric holds per-symbol complexity/Halstead metrics.
type SymbolComplexityMetric struct {
	SymbolID            int64   `db:"symbol_id"`
	CognitiveComplexity int     `db:"cognitive_complexity"`
	NestingDepth         int     `db:"nesting_depth"`
	ParamCount           int     `db:"param_count"`
	LineCount            int     `db:"line_count"`
	ReturnCount          int     `db:"return_count"`
	BoolOpCount          int     `db:"bool_op_count"`
	CallbackDepth        int     `db:"callback_depth"`
	CyclomaticDensity    float64 `db:"cyclomatic_density"`
	HalsteadVolume       float64 `db:"halstead_volume"`
	HalsteadDifficulty   float64 `db:"halstead_difficulty"`
	HalsteadEffort       float64 `db:"halstead_effort"`
	HalsteadBugs         float64 `db:"halstead_bugs"`
}

// ClusterAssignment maps a symbol to the community it was placed in.
type ClusterAssignment struct {
	SymbolID     int64  `db:"symbol_id"`
	ClusterID    int    `db:"cluster_id"`
	ClusterLabel string `db:"cluster_label"`
}

// Commit is a persisted git commit row.
type Commit struct {
	Hash      string `db:"hash"`
	Author    string `db:"author"`
	Timestamp int64  `db:"timestamp"`
	Message   string `db:"message"`
}

// FileChange is a persisted per-commit, per-file numstat row.
type FileChange struct {
	CommitHash   string `db:"commit_hash"`
	FileID       *int64 `db:"file_id"`
	Path         string `db:"path"`
	LinesAdded   int    `db:"lines_added"`
	LinesRemoved int    `db:"lines_removed"`
}

// Cochange aggregates how often two files change together.
type Cochange struct {
	FileA int64 `db:"file_a"`
	FileB int64 `db:"file_b"`
	Count int   `db:"count"`
}

// FileStats aggregates git-derived per-file statistics.
type FileStats struct {
	FileID          int64   `db:"file_id"`
	CommitCount     int     `db:"commit_count"`
	TotalChurn      int     `db:"total_churn"`
	DistinctAuthors int     `db:"distinct_authors"`
	Complexity      float64 `db:"complexity"`
	CochangeEntropy float64 `db:"cochange_entropy"`
}

// Hyperedge is one commit's full touched-file set, stored as a single
// higher-arity relation.
type Hyperedge struct {
	ID         int64  `db:"id"`
	CommitHash string `db:"commit_hash"`
	FileCount  int    `db:"file_count"`
	SigHash    string `db:"sig_hash"`
}

// HyperedgeMember is one file's membership in a commit hyperedge.
type HyperedgeMember struct {
	HyperedgeID int64 `db:"hyperedge_id"`
	FileID      int64 `db:"file_id"`
	Ordinal     int   `db:"ordinal"`
}

// Reference is a transient, unresolved textual reference produced by an
// extractor. It is never persisted; the resolver consumes it and produces
// Edge records.
type Reference struct {
	SourceName *string // nil when scraped from a template/regex region
	TargetName string
	Kind       EdgeKind
	Line       int
	SourceFile string
}

// Direction controls dependency-graph traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"
	DirectionDownstream Direction = "downstream"
)
