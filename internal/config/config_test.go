// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "auto", cfg.UI.Theme)
	require.True(t, cfg.UI.Markdown)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
api_url = "http://localhost:8080"
data_dir = "/tmp/parley-test"
request_timeout_secs = 30

[ui]
theme = "dark"
markdown = false
code_style = "dracula"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))
	require.Equal(t, "http://localhost:8080", cfg.APIURL)
	require.Equal(t, "/tmp/parley-test", cfg.DataDir)
	require.Equal(t, 30, cfg.RequestTimeoutSecs)
	require.Equal(t, "dark", cfg.UI.Theme)
	require.False(t, cfg.UI.Markdown)
	require.Equal(t, "dracula", cfg.UI.CodeStyle)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PARLEY_API_URL", "http://example.com")
	t.Setenv("PARLEY_DATA_DIR", "/data/parley")
	t.Setenv("PARLEY_THEME", "light")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	require.Equal(t, "http://example.com", cfg.APIURL)
	require.Equal(t, "/data/parley", cfg.DataDir)
	require.Equal(t, "light", cfg.UI.Theme)
}

func TestValidate(t *testing.T) {
	cfg := Default()

	cfg.APIURL = "not a url"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.APIURL = "ftp://example.com"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.UI.Theme = "neon"
	err := cfg.Validate()
	require.Error(t, err)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "ui.theme", verr.Field)

	cfg = Default()
	cfg.RequestTimeoutSecs = 0
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
}

func TestSaveFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	orig := Default()
	orig.APIURL = "http://localhost:9999"
	orig.UI.Theme = "dark"
	require.NoError(t, SaveFile(orig, path))

	loaded := Default()
	require.NoError(t, LoadFile(loaded, path))
	require.Equal(t, orig.APIURL, loaded.APIURL)
	require.Equal(t, orig.UI.Theme, loaded.UI.Theme)
}
