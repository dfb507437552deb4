package main

import (
	"context"
	"fmt"

	"github.com/civicsignal/augur/internal/codesvc"
	"github.com/civicsignal/augur/internal/logging"
	"github.com/civicsignal/augur/internal/parsesvc"
	"github.com/civicsignal/augur/pkg/augur"
	"github.com/civicsignal/augur/pkg/augur/config"
	"github.com/civicsignal/augur/pkg/augur/segment"
	"github.com/civicsignal/augur/pkg/augur/store"
	"github.com/civicsignal/augur/pkg/augur/store/sqlite"
)

// setupLogging applies the config's logging section to the global logger.
func setupLogging(cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Logging.Format)
	return nil
}

// buildEngine wires the engine from config: service clients, segmenter, and
// the optional SQLite archive.
func buildEngine(ctx context.Context, cfg config.Config) (*augur.Engine, error) {
	var archive store.Store
	if cfg.Archive.Path != "" {
		var err error
		archive, err = sqlite.Open(ctx, cfg.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
	}

	return augur.New(augur.Options{
		Parser:           &parsesvc.Client{BaseURL: cfg.Parser.URL, Timeout: cfg.Parser.Timeout.Std()},
		Coder:            &codesvc.Client{BaseURL: cfg.Coder.URL, Timeout: cfg.Coder.Timeout.Std()},
		Segmenter:        segment.New(cfg.Segmenter.ExtraAbbreviations...),
		Archive:          archive,
		Workers:          cfg.Pipeline.Workers,
		DocumentDeadline: cfg.Pipeline.DocumentDeadline.Std(),
		ScrubHTML:        cfg.Pipeline.ScrubHTML,
		Logger:           logging.New("engine"),
	}), nil
}
