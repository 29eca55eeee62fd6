package mongoc

import (
	"path/filepath"
	"testing"

	"mongocdocs/internal/builder"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exists(t *testing.T, fs afero.Fs, parts ...string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, filepath.Join(parts...))
	require.NoError(t, err)
	return ok
}

func TestGenerateRedirects_WritesSiblingStub(t *testing.T) {
	app, fs := newTestApp(t, "dirhtml", nil)
	require.NoError(t, app.Init())

	page := &builder.Page{Name: "a/b", Context: builder.PageContext{}}
	require.NoError(t, GenerateRedirects(app, page))

	data, err := afero.ReadFile(fs, filepath.Join("out", "a", "b.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `href="b/"`)
	assert.Contains(t, string(data), "Redirecting to a/b")
}

func TestGenerateRedirects_Skips(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		ctx     builder.PageContext
		builder string
		stub    []string
	}{
		{"index page", "index", builder.PageContext{}, "dirhtml", []string{"index.html"}},
		{"dotted index page", "api.index", builder.PageContext{}, "dirhtml", []string{"api.index.html"}},
		{"already a redirect", "a/b", builder.PageContext{"writing-redirect": 1}, "dirhtml", []string{"a", "b.html"}},
		{"flat html builder", "a/b", builder.PageContext{}, "html", []string{"a.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, fs := newTestApp(t, tt.builder, nil)
			require.NoError(t, app.Init())

			require.NoError(t, GenerateRedirects(app, &builder.Page{Name: tt.page, Context: tt.ctx}))
			assert.False(t, exists(t, fs, append([]string{"out"}, tt.stub...)...))
		})
	}
}

func TestGenerateRedirects_RedirectPageDoesNotRecurse(t *testing.T) {
	app, fs := newTestApp(t, "dirhtml", nil)
	require.NoError(t, app.Init())

	var seen []string
	app.ConnectPageContext(func(_ *builder.App, page *builder.Page) error {
		seen = append(seen, page.Name)
		return nil
	})

	require.NoError(t, GenerateRedirects(app, &builder.Page{Name: "x/y", Context: builder.PageContext{}}))

	// Only the stub itself went through the hooks; it did not spawn another.
	assert.Equal(t, []string{"redirect-for-x/y"}, seen)
	assert.True(t, exists(t, fs, "out", "x", "y.html"))
	assert.False(t, exists(t, fs, "out", "x.html"))
}
