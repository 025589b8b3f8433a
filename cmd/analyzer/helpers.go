package main

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/yudduy/ira/internal/config"
	"github.com/yudduy/ira/internal/logger"
	"github.com/yudduy/ira/internal/wayback"
)

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg := config.Default()

	if flags.configPath != "" {
		loaded, err := config.LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// newRunLogger opens the configured log and returns it with a fresh run id for tagging.
func newRunLogger(cfg *config.Config, withFile bool) (*logger.Logger, string, error) {
	opts := logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if withFile {
		opts.File = cfg.Logging.File
	}

	base, err := logger.New(opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to set up logging: %w", err)
	}

	runID := uuid.NewString()

	return base, runID, nil
}

func newArchiveClients(cfg *config.Config, log *logger.Logger) (*wayback.IndexClient, *wayback.Extractor, error) {
	session := wayback.NewSession(cfg.Archive.UserAgent, cfg.GetTimeout(), cfg.Content.MaxBodyKb)

	index, err := wayback.NewIndexClient(cfg, session, log)
	if err != nil {
		return nil, nil, err
	}

	return index, wayback.NewExtractor(cfg, session, log), nil
}
