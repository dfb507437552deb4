package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/civicsignal/augur/internal/logging"
	"github.com/civicsignal/augur/internal/newsfeed"
	"github.com/civicsignal/augur/pkg/augur/config"
)

var extractFlags struct {
	config string
	input  string
	output string
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Code a batch of documents from a JSONL file",
	Long: `Reads documents ({"id","date","text"} per line) from a JSONL file, runs each
through the extraction pipeline, and writes one aggregated JSON result per
line to stdout or the output file.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractFlags.config, "config", "", "path to YAML config file")
	extractCmd.Flags().StringVar(&extractFlags.input, "input", "", "input JSONL file (required)")
	extractCmd.Flags().StringVar(&extractFlags.output, "output", "", "output file (default stdout)")
	_ = extractCmd.MarkFlagRequired("input")
}

func runExtract(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(extractFlags.config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := setupLogging(cfg); err != nil {
		return err
	}

	engine, err := buildEngine(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	docs, err := newsfeed.LoadFromJSONL(extractFlags.input)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if extractFlags.output != "" {
		f, err := os.Create(extractFlags.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	logger := logging.New("extract")
	failed := 0
	for _, doc := range docs {
		result, err := engine.Extract(cmd.Context(), doc)
		if err != nil {
			logger.Error("document rejected", "doc_id", doc.ID, "error", err)
			failed++
			continue
		}
		line, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("encode result for %s: %w", doc.ID, err)
		}
		if _, err := fmt.Fprintln(out, string(line)); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	logger.Info("batch complete", "documents", len(docs), "rejected", failed)
	return nil
}
