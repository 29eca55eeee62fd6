package mongoc

import (
	"io"
	"log/slog"
	"testing"

	"mongocdocs/internal/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func directiveContext(lines ...string) *builder.DirectiveContext {
	return &builder.DirectiveContext{
		Name:    "versionlist",
		DocName: "index",
		Content: lines,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func envWith(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

// paragraphLink unpacks a paragraph holding a single link.
func paragraphLink(t *testing.T, n ast.Node) (label, dest string) {
	t.Helper()
	p, ok := n.(*ast.Paragraph)
	require.True(t, ok, "want paragraph, got %T", n)
	link, ok := p.FirstChild().(*ast.Link)
	require.True(t, ok, "want link, got %T", p.FirstChild())
	s, ok := link.FirstChild().(*ast.String)
	require.True(t, ok)
	return string(s.Value), string(link.Destination)
}

func TestVersionList_BuildsLinksInInputOrder(t *testing.T) {
	d := VersionList{LookupEnv: envWith(map[string]string{"LIBMONGOC_VERSION_LIST": "1.0,2.0,3.0"})}

	nodes := d.Run(directiveContext("libmongoc"))
	require.Len(t, nodes, 3)

	label, dest := paragraphLink(t, nodes[0])
	assert.Equal(t, "Latest Release (1.0)", label)
	assert.Equal(t, "https://www.mongoc.org/libmongoc/1.0/index.html", dest)

	label, dest = paragraphLink(t, nodes[1])
	assert.Equal(t, "Current Development (master)", label)
	assert.Equal(t, "https://s3.amazonaws.com/mciuploads/mongo-c-driver/docs/libmongoc/latest/index.html", dest)

	list, ok := nodes[2].(*ast.List)
	require.True(t, ok)
	require.Equal(t, 3, list.ChildCount())

	var got []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		label, dest := paragraphLink(t, item.FirstChild())
		got = append(got, label)
		assert.Equal(t, "https://www.mongoc.org/libmongoc/"+label+"/index.html", dest)
	}
	assert.Equal(t, []string{"1.0", "2.0", "3.0"}, got)
}

func TestVersionList_NoTrimmingOrDedup(t *testing.T) {
	d := VersionList{LookupEnv: envWith(map[string]string{"LIBBSON_VERSION_LIST": "2.0, 2.0"})}

	nodes := d.Run(directiveContext("libbson"))
	require.Len(t, nodes, 3)
	list := nodes[2].(*ast.List)
	require.Equal(t, 2, list.ChildCount())

	label, dest := paragraphLink(t, list.LastChild().FirstChild())
	assert.Equal(t, " 2.0", label)
	assert.Equal(t, "https://www.mongoc.org/libbson/ 2.0/index.html", dest)
}

func TestVersionList_UnknownLibrary_ReturnsNothing(t *testing.T) {
	d := VersionList{LookupEnv: envWith(map[string]string{"UNKNOWN_VERSION_LIST": "1.0"})}
	assert.Empty(t, d.Run(directiveContext("unknown")))
	assert.Empty(t, d.Run(directiveContext()))
}

func TestVersionList_MissingEnv_ReturnsNothing(t *testing.T) {
	d := VersionList{LookupEnv: envWith(nil)}
	assert.Empty(t, d.Run(directiveContext("libmongoc")))
}

func TestVersionList_DefaultsToProcessEnv(t *testing.T) {
	t.Setenv("LIBBSON_VERSION_LIST", "1.9.0")

	nodes := VersionList{}.Run(directiveContext("libbson"))
	require.Len(t, nodes, 3)
	_, dest := paragraphLink(t, nodes[0])
	assert.Equal(t, "https://www.mongoc.org/libbson/1.9.0/index.html", dest)
}
