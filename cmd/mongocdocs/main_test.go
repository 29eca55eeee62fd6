package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"mongocdocs/internal/builder"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": builder.Version})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestCLI_BuildFlags(t *testing.T) {
	cli, kctx := parse(t, "build", "-b", "man", "-D", "analytics=1", "--clean")
	assert.Equal(t, "build", kctx.Command())
	assert.Equal(t, "site.yaml", cli.Config)
	assert.Equal(t, "man", cli.Build.Builder)
	assert.Equal(t, map[string]string{"analytics": "1"}, cli.Build.Define)
	assert.True(t, cli.Build.Clean)
	assert.Equal(t, filepath.Join("_build", "man"), cli.Build.outDir())

	cli, _ = parse(t, "serve", "-o", "preview")
	assert.Equal(t, "dirhtml", cli.Serve.Builder)
	assert.Equal(t, 1313, cli.Serve.Port)
	assert.Equal(t, "preview", cli.Serve.outDir())
}

func TestCLI_RejectsUnknownBuilder(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": builder.Version})
	require.NoError(t, err)
	_, err = parser.Parse([]string{"build", "-b", "latex"})
	require.Error(t, err)
}

func TestBuildCmd_Run(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "content")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.md"), []byte("# Home\n\n```{versionlist}\nlibbson\n```\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "bson_t.md"), []byte(":man_page: bson_t\n\n# bson_t\n"), 0o644))
	cfgPath := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("project: libbson\nsource_dir: "+src+"\n"), 0o644))
	t.Setenv("LIBBSON_VERSION_LIST", "1.30.0")

	out := filepath.Join(dir, "out")
	cmd := &BuildCmd{BuildFlags: BuildFlags{Builder: "dirhtml", Output: out, Define: map[string]string{"analytics": "true"}}}
	require.NoError(t, cmd.Run(context.Background(), &CLI{Config: cfgPath}))

	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "https://www.mongoc.org/libbson/1.30.0/index.html")
	assert.Contains(t, string(index), "UA-7301842-14")

	_, err = os.Stat(filepath.Join(out, "bson_t", "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "bson_t.html"))
	require.NoError(t, err)

	cmd = &BuildCmd{BuildFlags: BuildFlags{Builder: "man", Output: filepath.Join(dir, "man")}}
	require.NoError(t, cmd.Run(context.Background(), &CLI{Config: cfgPath}))
	_, err = os.Stat(filepath.Join(dir, "man", "bson_t.3"))
	require.NoError(t, err)
}

func TestServeCmd_WatchPathsHonourOverrides(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("project: libbson\nsource_dir: content\n"), 0o644))
	root := &CLI{Config: cfgPath}

	cmd := &ServeCmd{}
	watch, err := cmd.watchPaths(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"content", templateDir, staticDir, cfgPath, ".env"}, watch)

	cmd = &ServeCmd{BuildFlags: BuildFlags{Define: map[string]string{"source_dir": "src/libbson"}}}
	watch, err = cmd.watchPaths(root)
	require.NoError(t, err)
	assert.Equal(t, "src/libbson", watch[0])
}
