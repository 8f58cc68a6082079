// Package cmd provides the CLI commands for docsearch.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/irfanahme/cloud-document-search/internal/blob"
	"github.com/irfanahme/cloud-document-search/internal/config"
	"github.com/irfanahme/cloud-document-search/internal/docsearch"
	"github.com/irfanahme/cloud-document-search/internal/extract"
	"github.com/irfanahme/cloud-document-search/internal/index"
	"github.com/irfanahme/cloud-document-search/internal/logging"
	"github.com/irfanahme/cloud-document-search/internal/telemetry"
	"github.com/irfanahme/cloud-document-search/pkg/version"
)

var (
	configPath     string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the docsearch CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docsearch",
		Short: "Ingest documents from a blob store into a full-text search index",
		Long: `docsearch keeps a full-text search index in sync with a blob store.

It fetches documents, extracts their text, and indexes them with
relevance scoring and highlighting. Unchanged documents are detected
by fingerprint and skipped, and a sync pass removes index entries
whose source document is gone.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.SetVersionTemplate("docsearch version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.docsearch/logs/")

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newProcessCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// startLogging sets up file logging; stdout stays clean for command
// output.
func startLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	logCfg.WriteToStderr = false
	if debugMode {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		// Logging is best effort for the CLI.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// app bundles a wired service with the resources it owns.
type app struct {
	cfg *config.Config
	svc *docsearch.Service
	tel *telemetry.RunStore

	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// newApp loads configuration and wires the store, index and service.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := blob.NewGCSStore(ctx, blob.GCSOptions{
		Bucket:            cfg.Store.Bucket,
		Prefix:            cfg.Store.Prefix,
		AllowedExtensions: cfg.Store.AllowedExtensions,
		URLTTL:            cfg.Store.URLTTL,
		URLCacheSize:      cfg.Store.URLCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	a := &app{cfg: cfg}
	a.closers = append(a.closers, store.Close)

	idx, err := index.NewBleveIndex(cfg.Index.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open index: %w", err)
	}
	a.closers = append(a.closers, idx.Close)

	opts := []docsearch.Option{}
	if cfg.Telemetry.Enabled {
		tel, err := telemetry.Open(cfg.Telemetry.Path)
		if err != nil {
			slog.Warn("telemetry disabled", "error", err)
		} else {
			a.tel = tel
			a.closers = append(a.closers, tel.Close)
			opts = append(opts, docsearch.WithRecorder(tel))
		}
	}

	a.svc = docsearch.New(cfg, store, idx, extract.NewPlainText(), opts...)
	return a, nil
}
