// Package main is the docintel CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/docintel/internal/cli"
	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/server"
	"github.com/hyperjump/docintel/internal/storage"
	"github.com/hyperjump/docintel/internal/watcher"
	"github.com/hyperjump/docintel/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/docintel/config.yaml"
	defaultServerURL  = "http://localhost:8080"
)

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if present, and built-in defaults are used when neither file exists.
// Returns the config and the path that was actually loaded ("" for built-in defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			local := filepath.Join(cwd, "config.yaml")
			if _, err := os.Stat(local); err == nil {
				cfg, err := config.Load(local)
				if err != nil {
					return nil, "", err
				}
				return cfg, local, nil
			}
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "docintel",
		Short:        "docintel - document retrieval and question answering",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newIngestCmd(opts),
		newQueryCmd(),
		newStatusCmd(),
		newWatchCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "docintel version %s\n", version)
			},
		},
	)
	return root
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server and the inbox watcher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, resolved, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			debug := cfg.Debug || opts.debug
			logger, err := utils.NewLogger(debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			logger.Info("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debug))
			return runServe(cmd.Context(), cfg, resolved, logger)
		},
	}
}

func runServe(parent context.Context, cfg *config.Config, configPath string, logger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := initializeComponents(ctx, cfg, cfg.Storage.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer components.Close()

	watch := watcher.NewWatcher(components.Indexer, cfg.Watch.Directories, watcher.WithLogger(logger))
	if err := watch.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watch.Stop()
	go watch.Sync()

	server.Version = version
	srv := server.NewServer(components.Engine, components.Indexer, components.Storage, cfg, logger, watch, configPath)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

type ingestOptions struct {
	query  string
	topK   int
	output string
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	io := &ingestOptions{}
	cmd := &cobra.Command{
		Use:   "ingest <file|dir>... [--query text]",
		Short: "Ingest documents into a fresh in-process index and optionally query it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(io.output)
			if err != nil {
				return err
			}
			cfg, _, err := loadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := utils.NewCLILogger(cfg.Debug || opts.debug)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			components, err := initializeComponents(ctx, cfg, storage.MemoryPath, logger)
			if err != nil {
				return err
			}
			defer components.Close()

			summaries := ingestPaths(ctx, components, args)
			if err := cli.WriteIngestSummaries(cmd.OutOrStdout(), summaries, format); err != nil {
				return err
			}
			if strings.TrimSpace(io.query) == "" {
				return nil
			}
			answer, err := components.Engine.Query(ctx, &models.SearchQuery{Query: io.query, TopK: io.topK})
			if err != nil {
				return err
			}
			return cli.WriteAnswer(cmd.OutOrStdout(), answer, format)
		},
	}
	cmd.Flags().StringVarP(&io.query, "query", "q", "", "question to answer after ingestion")
	cmd.Flags().IntVarP(&io.topK, "top-k", "k", 0, "number of sources (default from config)")
	cmd.Flags().StringVarP(&io.output, "output", "o", "text", "output format: text or json")
	return cmd
}

// ingestPaths ingests files and directories, reporting one summary per file.
func ingestPaths(ctx context.Context, c *Components, paths []string) []cli.IngestSummary {
	var out []cli.IngestSummary
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			out = append(out, cli.IngestSummary{Path: p, Error: err.Error()})
			continue
		}
		if !info.IsDir() {
			out = append(out, ingestFile(ctx, c, p))
			continue
		}
		_ = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !c.Indexer.Accepts(path) {
				return nil
			}
			out = append(out, ingestFile(ctx, c, path))
			return nil
		})
	}
	return out
}

func ingestFile(ctx context.Context, c *Components, path string) cli.IngestSummary {
	doc, err := c.Indexer.IndexFile(ctx, path)
	if err != nil {
		return cli.IngestSummary{Path: path, Error: err.Error()}
	}
	return cli.IngestSummary{Path: path, DocumentID: doc.ID, Chunks: doc.ChunkCount}
}

// buildQuery joins positional args so unquoted multi-word questions work.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

type remoteOptions struct {
	server  string
	output  string
	timeout time.Duration
}

func (o *remoteOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.server, "server", defaultServerURL, "server URL")
	cmd.Flags().StringVarP(&o.output, "output", "o", "text", "output format: text or json")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 2*time.Minute, "request timeout")
}

func (o *remoteOptions) client() *cli.Client {
	return cli.NewClient(o.server, o.timeout)
}

func newQueryCmd() *cobra.Command {
	ro := &remoteOptions{}
	var topK int
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a running server a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(ro.output)
			if err != nil {
				return err
			}
			query := buildQuery(args)
			if query == "" {
				return errors.New("query cannot be empty")
			}
			answer, err := ro.client().Search(cmd.Context(), query, topK)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			return cli.WriteAnswer(cmd.OutOrStdout(), answer, format)
		},
	}
	ro.register(cmd)
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of sources (default from server config)")
	return cmd
}

func newStatusCmd() *cobra.Command {
	ro := &remoteOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show server, catalog and index status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cli.ParseOutputFormat(ro.output)
			if err != nil {
				return err
			}
			status, err := ro.client().Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("status failed: %w", err)
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
	ro.register(cmd)
	return cmd
}

func newWatchCmd() *cobra.Command {
	ro := &remoteOptions{}
	var noSync bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Manage the server's inbox directories",
	}
	cmd.PersistentFlags().StringVar(&ro.server, "server", defaultServerURL, "server URL")
	cmd.PersistentFlags().DurationVar(&ro.timeout, "timeout", 30*time.Second, "request timeout")

	add := &cobra.Command{
		Use:   "add <dir>",
		Short: "Watch a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := ro.client().AddWatchDirectory(cmd.Context(), abs, !noSync); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", abs)
			return nil
		},
	}
	add.Flags().BoolVar(&noSync, "no-sync", false, "do not ingest files already in the directory")

	remove := &cobra.Command{
		Use:   "remove <dir>",
		Short: "Stop watching a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if err := ro.client().RemoveWatchDirectory(cmd.Context(), abs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stopped watching %s\n", abs)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List watched directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := ro.client().WatchDirectories(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range dirs {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
