// Package config loads service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/civicsignal/augur/pkg/augur/internalerr"
)

// Duration is a time.Duration that unmarshals from YAML strings like "500ms"
// or "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Service locates one external collaborator service.
type Service struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// Config is the full service configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Parser Service `yaml:"parser"`
	Coder  Service `yaml:"coder"`

	Pipeline struct {
		Workers int `yaml:"workers"`
		// DocumentDeadline bounds total processing of one document; zero
		// disables it.
		DocumentDeadline Duration `yaml:"document_deadline"`
		ScrubHTML        bool     `yaml:"scrub_html"`
	} `yaml:"pipeline"`

	Segmenter struct {
		ExtraAbbreviations []string `yaml:"extra_abbreviations"`
	} `yaml:"segmenter"`

	Archive struct {
		// Path to the SQLite archive file. Empty disables archiving.
		Path string `yaml:"path"`
	} `yaml:"archive"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Server.Addr = ":5002"
	c.Parser.Timeout = Duration(10 * time.Second)
	c.Coder.Timeout = Duration(10 * time.Second)
	c.Pipeline.Workers = 8
	c.Pipeline.ScrubHTML = true
	c.Logging.Level = "info"
	c.Logging.Format = "text"
	return c
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the fields every run needs.
func (c Config) Validate() error {
	if c.Parser.URL == "" {
		return fmt.Errorf("%w: parser.url required", internalerr.ErrInvalidConfig)
	}
	if c.Coder.URL == "" {
		return fmt.Errorf("%w: coder.url required", internalerr.ErrInvalidConfig)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr required", internalerr.ErrInvalidConfig)
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("%w: pipeline.workers must be >= 0", internalerr.ErrInvalidConfig)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json", internalerr.ErrInvalidConfig)
	}
	return nil
}
