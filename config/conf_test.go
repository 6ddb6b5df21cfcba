package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/helpcomp/camt-harmonizer/harmonize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestInitConfig(t *testing.T) {
	path := writeConfig(t, `
harmonize:
  batch_size: 5
  batch_delay: 500ms
  substitutions:
    - from: "VIR SEPA"
      to: "Virement "
labelOverrides:
  - contains: "MUTUELSANTE"
    label: "Prélèvement mutuelle santé"
output:
  format: json
`)

	c, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Harmonize.BatchSize)
	assert.Equal(t, []harmonize.Substitution{{From: "VIR SEPA", To: "Virement "}}, c.Harmonize.Substitutions)
	assert.Equal(t, []harmonize.Override{{Contains: "MUTUELSANTE", Label: "Prélèvement mutuelle santé"}}, c.LabelOverrides)
	assert.Equal(t, "json", c.Output.Format)

	delay, err := c.BatchDelay()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, delay)
}

func TestInitConfig_MissingFileUsesDefaults(t *testing.T) {
	c, err := InitConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Zero(t, c.Harmonize.BatchSize)
	assert.Nil(t, c.Harmonize.Substitutions)
	assert.Empty(t, c.LabelOverrides)
}

func TestInitConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "harmonize: [batch_size"},
		{name: "negative batch size", content: "harmonize:\n  batch_size: -1\n"},
		{name: "bad delay", content: "harmonize:\n  batch_delay: soon\n"},
		{name: "unknown format", content: "output:\n  format: pdf\n"},
		{name: "incomplete override", content: "labelOverrides:\n  - contains: EDF\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InitConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}
