package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicsignal/augur/pkg/augur/internalerr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	c := Default()

	assert.Equal(t, ":5002", c.Server.Addr)
	assert.Equal(t, 10*time.Second, c.Parser.Timeout.Std())
	assert.Equal(t, 10*time.Second, c.Coder.Timeout.Std())
	assert.Equal(t, 8, c.Pipeline.Workers)
	assert.True(t, c.Pipeline.ScrubHTML)
	assert.Zero(t, c.Pipeline.DocumentDeadline)
	assert.Empty(t, c.Archive.Path)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":8080"
parser:
  url: http://parser:5000/parse
  timeout: 250ms
coder:
  url: http://coder:5001/code
pipeline:
  workers: 4
  document_deadline: 30s
  scrub_html: false
segmenter:
  extra_abbreviations: ["rpt.", "spokesm."]
archive:
  path: /var/lib/augur/archive.db
logging:
  level: debug
  format: json
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "http://parser:5000/parse", c.Parser.URL)
	assert.Equal(t, 250*time.Millisecond, c.Parser.Timeout.Std())
	// Unset fields keep their defaults.
	assert.Equal(t, 10*time.Second, c.Coder.Timeout.Std())
	assert.Equal(t, 4, c.Pipeline.Workers)
	assert.Equal(t, 30*time.Second, c.Pipeline.DocumentDeadline.Std())
	assert.False(t, c.Pipeline.ScrubHTML)
	assert.Equal(t, []string{"rpt.", "spokesm."}, c.Segmenter.ExtraAbbreviations)
	assert.Equal(t, "/var/lib/augur/archive.db", c.Archive.Path)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "json", c.Logging.Format)
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, "parser:\n  timeout: soon\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Parser.URL = "http://parser:5000/parse"
	valid.Coder.URL = "http://coder:5001/code"
	require.NoError(t, valid.Validate())

	t.Run("missing parser url", func(t *testing.T) {
		c := valid
		c.Parser.URL = ""
		assert.ErrorIs(t, c.Validate(), internalerr.ErrInvalidConfig)
	})

	t.Run("missing coder url", func(t *testing.T) {
		c := valid
		c.Coder.URL = ""
		assert.ErrorIs(t, c.Validate(), internalerr.ErrInvalidConfig)
	})

	t.Run("bad log format", func(t *testing.T) {
		c := valid
		c.Logging.Format = "xml"
		assert.ErrorIs(t, c.Validate(), internalerr.ErrInvalidConfig)
	})

	t.Run("negative workers", func(t *testing.T) {
		c := valid
		c.Pipeline.Workers = -1
		assert.ErrorIs(t, c.Validate(), internalerr.ErrInvalidConfig)
	})
}
