// cmd/session.go - Engine wiring shared by the subcommands
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/valpere/geolayers/internal/config"
	"github.com/valpere/geolayers/internal/loader"
	"github.com/valpere/geolayers/internal/logging"
	"github.com/valpere/geolayers/internal/output"
	"github.com/valpere/geolayers/internal/registry"
	"github.com/valpere/geolayers/internal/resolver"
)

// session holds one command's engine: registry, resolver and loader built
// from the loaded configuration.
type session struct {
	cfg      *config.Config
	fs       afero.Fs
	logger   *slog.Logger
	closer   io.Closer
	registry *registry.Registry
	resolver *resolver.Resolver
	loader   *loader.Loader
}

func newSession(fs afero.Fs) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closer, err := logging.New(fs, cfg.LogSettings())
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	reg := registry.New(logger)
	res := resolver.New(&resolver.Options{
		FallbackScale: cfg.Resolver.FallbackScale,
		SpatialIndex:  cfg.Resolver.SpatialIndex,
		Logger:        logger,
	})

	return &session{
		cfg:      cfg,
		fs:       fs,
		logger:   logger,
		closer:   closer,
		registry: reg,
		resolver: res,
		loader:   loader.New(fs, reg, res, cfg, logger),
	}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

// load loads paths into the registry. Per-file failures are tolerated as long
// as something loaded, unless fail_on_error is set.
func (s *session) load(ctx context.Context, paths []string) (*loader.Report, error) {
	report, err := s.loader.LoadAll(ctx, paths)
	if err != nil && (s.cfg.Loader.FailOnError || len(report.Loaded()) == 0) {
		return report, err
	}

	s.logger.Debug("files loaded", "files", len(paths), "layers", s.registry.Len(), "version", s.registry.Version())
	return report, nil
}

// emit writes doc to the configured destination
func (s *session) emit(cmd *cobra.Command, doc output.Document) error {
	w, err := output.NewWriter(s.fs, cmd.OutOrStdout(), &output.WriterConfig{
		Format:      output.Format(strings.ToLower(s.cfg.Output.Format)),
		Pretty:      s.cfg.Output.Pretty,
		Compression: s.cfg.Output.Compression,
		Path:        s.cfg.Output.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create output writer: %w", err)
	}

	if err := w.Write(doc); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	s.logger.Debug("output written", "destination", w.Name(), "bytes", w.Size())
	return nil
}

// withSession builds a session on the OS filesystem for the duration of fn
func withSession(fn func(s *session) error) error {
	s, err := newSession(afero.NewOsFs())
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}
