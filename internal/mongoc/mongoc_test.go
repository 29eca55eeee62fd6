package mongoc

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"mongocdocs/internal/builder"
	"mongocdocs/internal/config"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// newTestApp builds an App over an in-memory source tree with the mongoc
// extension installed.
func newTestApp(t *testing.T, builderName string, files map[string]string) (*builder.App, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.FromSlash(name), []byte(body), 0o644))
	}

	cfg := &config.SiteConfig{
		Project:      "libmongoc",
		SourceDir:    "content",
		SourceSuffix: []string{".md"},
		Params:       map[string]interface{}{},
	}
	app, err := builder.NewApp(builder.AppOptions{
		Config:      cfg,
		Fs:          fs,
		OutDir:      "out",
		BuilderName: builderName,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, app.Setup(Extension{}))
	return app, fs
}

func TestSetup_RegistersOnce(t *testing.T) {
	app, _ := newTestApp(t, "html", nil)

	// A second registration collides on the config value.
	require.ErrorIs(t, Setup(app), builder.ErrDuplicateConfigValue)
}

func TestApplyCommonConfig_FillsUnsetValues(t *testing.T) {
	app, _ := newTestApp(t, "html", nil)
	app.Config.ShowSourceLink = config.BoolPtr(true)
	require.NoError(t, app.Init())

	cfg := app.Config
	require.Equal(t, Author, cfg.Author)
	require.Equal(t, "0.1", cfg.NeedsVersion)
	require.False(t, config.Flag(cfg.SmartQuotes, true))
	require.False(t, config.Flag(cfg.CopySource, true))
	require.True(t, config.Flag(cfg.ShowSourceLink, false))
	require.False(t, cfg.Bool("analytics"))
}

func TestBuild_DirHTML_EndToEnd(t *testing.T) {
	t.Setenv("LIBMONGOC_VERSION_LIST", "1.2.0,1.1.0")
	app, fs := newTestApp(t, "dirhtml", map[string]string{
		"content/index.md":           "# Home\n\n```{versionlist}\nlibmongoc\n```\n",
		"content/mongoc_client_t.md": ":man_page: mongoc_client_t\n\n# mongoc_client_t\n\nA client.\n",
	})
	require.NoError(t, app.Config.ApplyOverrides(map[string]string{"analytics": "1"}))

	n, err := app.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	index, err := afero.ReadFile(fs, filepath.Join("out", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(index), `href="https://www.mongoc.org/libmongoc/1.2.0/index.html"`)
	require.Contains(t, string(index), "googletagmanager")

	page, err := afero.ReadFile(fs, filepath.Join("out", "mongoc_client_t", "index.html"))
	require.NoError(t, err)
	require.NotContains(t, string(page), ":man_page:")

	redirect, err := afero.ReadFile(fs, filepath.Join("out", "mongoc_client_t.html"))
	require.NoError(t, err)
	require.Contains(t, string(redirect), `href="mongoc_client_t/"`)
	require.Contains(t, string(redirect), "googletagmanager")

	require.Len(t, app.Config.ManPages, 1)
}

func TestBuild_Man_WritesCollectedPages(t *testing.T) {
	app, fs := newTestApp(t, "man", map[string]string{
		"content/index.md":         "# Home\n",
		"content/api/bson_t.md":    ":man_page: bson_t\n\n# bson_t\n\nA BSON document.\n",
		"content/api/bson_iter.md": ":man_page: bson_iter_t\n\n# bson_iter_t\n",
	})

	_, err := app.Build(context.Background())
	require.NoError(t, err)

	for _, name := range []string{"bson_t.3", "bson_iter_t.3"} {
		data, err := afero.ReadFile(fs, filepath.Join("out", name))
		require.NoError(t, err, name)
		require.Contains(t, string(data), ".TH")
	}
	exists, err := afero.Exists(fs, filepath.Join("out", "index.html"))
	require.NoError(t, err)
	require.False(t, exists)
}
