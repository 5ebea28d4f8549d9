package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/memory"
)

func TestConfigShow_Empty(t *testing.T) {
	out, err := runCLI(t, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "no settings saved")
}

func TestConfigSetAndShow(t *testing.T) {
	store := memory.NewConfigStore()

	_, err := runCLIWithConfig(t, store, "config", "set", "mermaid.scale", "1.5")
	require.NoError(t, err)
	_, err = runCLIWithConfig(t, store, "config", "set", "mermaid.width", "1024")
	require.NoError(t, err)
	_, err = runCLIWithConfig(t, store, "config", "set", "links.strict_fragments", "true")
	require.NoError(t, err)
	_, err = runCLIWithConfig(t, store, "config", "set", "tools.pdf_engine", "xelatex")
	require.NoError(t, err)

	assert.InDelta(t, 1.5, store.GetFloat("mermaid.scale"), 1e-9)
	assert.Equal(t, 1024, store.GetInt("mermaid.width"))
	assert.True(t, store.GetBool("links.strict_fragments"))
	assert.Equal(t, "xelatex", store.GetString("tools.pdf_engine"))

	out, err := runCLIWithConfig(t, store, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "mermaid.width = 1024")
	assert.Contains(t, out, "tools.pdf_engine = xelatex")
}

func TestConfigSet_NeedsTwoArgs(t *testing.T) {
	_, err := runCLI(t, "config", "set", "title")
	assert.Error(t, err)
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"42", int64(42)},
		{"-3", int64(-3)},
		{"1.25", 1.25},
		{"true", true},
		{"false", false},
		{"2m", "2m"},
		{"tectonic", "tectonic"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseConfigValue(tt.raw))
		})
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/writer")

	assert.Equal(t, "/home/writer", expandHome("~"))
	assert.Equal(t, "/home/writer/docs", expandHome("~/docs"))
	assert.Equal(t, "docs/~/x", expandHome("docs/~/x"))
	assert.Equal(t, "~other/docs", expandHome("~other/docs"))
	assert.Empty(t, expandHome(""))
}
