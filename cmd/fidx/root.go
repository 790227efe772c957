package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/fidx/pkg/fidx/config"
	"github.com/jamesainslie/fidx/pkg/fidx/fsys"
	"github.com/jamesainslie/fidx/pkg/fidx/hashing"
	"github.com/jamesainslie/fidx/pkg/fidx/indexer"
	"github.com/jamesainslie/fidx/pkg/fidx/logging"
	"github.com/jamesainslie/fidx/pkg/fidx/pathsec"
	"github.com/jamesainslie/fidx/pkg/fidx/scanner"
	"github.com/jamesainslie/fidx/pkg/fidx/store"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "fidx",
		Short: "Index filesystem roots into a durable, queryable store",
		Long: `fidx walks configured filesystem roots into a persistent index so
search, file-tree browsing, and cross-reference resolution can query what
files exist without re-walking disk. File identity is kept stable across
renames through content hashing; paths outside the configured roots and
symlink traversal are refused.

Examples:
  fidx rebuild                 # Full rebuild of every configured root
  fidx rebuild --root <id>     # Rebuild a single root
  fidx rebuild --force-hash    # Re-hash everything regardless of size
  fidx status                  # Active and last completed run
  fidx stats                   # Per-root aggregate counts
  fidx lookup /data/old.txt    # Alias-aware path resolution`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/fidx/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log to stderr as well as the log file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired-up engine for a command invocation.
type app struct {
	cfg   *config.Config
	store *store.Store
	coord *indexer.Coordinator
}

// newApp loads configuration, initializes logging, opens the store, and
// wires the engine with its explicit dependency bundle.
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.Config{
		Level:        cfg.Logging.Level,
		Path:         cfg.Logging.Path,
		ConsoleLevel: cfg.Logging.ConsoleLevel,
		Components:   cfg.Logging.Components,
	}
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose && logCfg.ConsoleLevel == "" {
		logCfg.ConsoleLevel = "debug"
	}
	if err := logging.Init(logCfg); err != nil {
		return nil, err
	}

	if err := config.EnsureDataDir(); err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}

	fs := fsys.NewOS()
	policy, err := pathsec.New(fs, cfg.Roots, cfg.BlockSymlinks)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	maxSize, err := cfg.HashMaxSize()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	sc := scanner.New(scanner.Deps{
		Store:       st,
		FS:          fs,
		Policy:      policy,
		Hasher:      hashing.New(fs),
		Refs:        scanner.NullRegistry{},
		HashMaxSize: maxSize,
	})

	return &app{
		cfg:   cfg,
		store: st,
		coord: indexer.New(st, sc, policy.Roots()),
	}, nil
}

// Close releases the store and the log file.
func (a *app) Close() {
	_ = a.store.Close()
	_ = logging.Close()
}
