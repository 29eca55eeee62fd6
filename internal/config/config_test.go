package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadSiteConfig_FillsDefaults(t *testing.T) {
	path := writeConfig(t, "project: libmongoc\nauthor: Someone\n")

	cfg, err := LoadSiteConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "libmongoc", cfg.Project)
	assert.Equal(t, DefaultSourceDir, cfg.SourceDir)
	assert.Equal(t, DefaultTemplate, cfg.Template)
	assert.Equal(t, []string{".md"}, cfg.SourceSuffix)
	assert.Nil(t, cfg.SmartQuotes)
}

func TestLoadSiteConfig_UnknownKeysGoToParams(t *testing.T) {
	path := writeConfig(t, "project: libbson\nanalytics: true\n")

	cfg, err := LoadSiteConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Bool("analytics"))
}

func TestLoadSiteConfig_MissingFile_ReturnsNotExist(t *testing.T) {
	_, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyOverrides_DefineStyleValues(t *testing.T) {
	cfg := SiteConfig{}
	err := cfg.ApplyOverrides(map[string]string{
		"analytics":        "1",
		"html_copy_source": "false",
		"source_suffix":    ".md,.markdown",
		"project":          "libmongoc",
	})
	require.NoError(t, err)

	assert.True(t, cfg.Bool("analytics"))
	require.NotNil(t, cfg.CopySource)
	assert.False(t, *cfg.CopySource)
	assert.Equal(t, []string{".md", ".markdown"}, cfg.SourceSuffix)
	assert.Equal(t, "libmongoc", cfg.Project)
}

func TestApplyOverrides_BadBool_ReturnsError(t *testing.T) {
	cfg := SiteConfig{}
	err := cfg.ApplyOverrides(map[string]string{"smart_quotes": "maybe"})
	require.Error(t, err)
}

func TestSetDefault_KeepsExistingValue(t *testing.T) {
	cfg := SiteConfig{Params: map[string]interface{}{"analytics": "1"}}
	cfg.SetDefault("analytics", false)
	cfg.SetDefault("other", 3)

	assert.True(t, cfg.Bool("analytics"))
	v, ok := cfg.Value("other")
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.False(t, cfg.Bool("missing"))
}

func TestFlag(t *testing.T) {
	assert.True(t, Flag(nil, true))
	assert.False(t, Flag(BoolPtr(false), true))
}
