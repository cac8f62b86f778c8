// Command roam indexes a repository's source, history, and structure into
// a queryable graph store. Adapted from onedusk-pd's cmd/decompose/main.go:
// same flag.FlagSet + config-merge + context.Background() shape, trimmed to
// the single `index` entry point the core needs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/dusk-indust/roam/internal/config"
	"github.com/dusk-indust/roam/internal/indexer"
	"github.com/dusk-indust/roam/internal/store"
)

type cliFlags struct {
	ProjectRoot string
	DatabasePath string
	Force       bool
	Verbose     bool
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("roam", flag.ContinueOnError)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "path to the repository to index")
	fs.StringVar(&flags.DatabasePath, "db", "", "path to the sqlite database (default: <project-root>/.roam/roam.db)")
	fs.BoolVar(&flags.Force, "force", false, "truncate and fully rebuild the index")
	fs.BoolVar(&flags.Verbose, "verbose", false, "enable verbose logging")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	projectRoot := flags.ProjectRoot
	if !filepath.IsAbs(projectRoot) {
		abs, err := filepath.Abs(projectRoot)
		if err != nil {
			return fmt.Errorf("resolving project root: %w", err)
		}
		projectRoot = abs
	}

	projCfg, err := config.Load(projectRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load roam.yml: %v\n", err)
		projCfg = &config.ProjectConfig{}
	}
	if projCfg.Verbose && !flags.Verbose {
		flags.Verbose = true
	}

	logger := logrus.New()
	if flags.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	dbPath := flags.DatabasePath
	if dbPath == "" {
		dbPath = projCfg.DatabasePath
	}
	if dbPath == "" {
		dbPath = filepath.Join(projectRoot, ".roam", "roam.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	st, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	opts := indexer.Options{Force: flags.Force, Verbose: flags.Verbose}

	if projCfg.IsWorkspace() {
		for _, repo := range projCfg.Workspace {
			p := indexer.NewWithPrefix(repo.AbsolutePath, repo.Alias, st, logger)
			if err := p.RunWithOptions(ctx, opts); err != nil {
				return fmt.Errorf("indexing %s (%s): %w", repo.Alias, repo.AbsolutePath, err)
			}
		}
	} else {
		p := indexer.New(projectRoot, st, logger)
		if err := p.RunWithOptions(ctx, opts); err != nil {
			return fmt.Errorf("indexing %s: %w", projectRoot, err)
		}
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	fmt.Printf(
		"indexed %s: %d files, %d symbols, %d edges, %d clusters, %d commits\n",
		projectRoot, stats.FileCount, stats.SymbolCount, stats.EdgeCount, stats.ClusterCount, stats.CommitCount,
	)
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "roam indexes a repository's code structure and history into a graph store.\n\n")
	fmt.Fprintf(os.Stderr, "usage: roam [flags]\n\n")
	fs.PrintDefaults()
}
