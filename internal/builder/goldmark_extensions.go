// internal/builder/goldmark_extensions.go
package builder

import (
	"path"
	"strings"

	"mongocdocs/internal/util"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkTransformer rewrites relative links to other .md sources into the
// active builder's URIs, relative to the page being rendered.
type mdLinkTransformer struct {
	app *App
}

func newMDLinkTransformer(a *App) parser.ASTTransformer {
	return &mdLinkTransformer{app: a}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	docname, _ := pc.Get(docNameKey).(string)
	b := t.app.builder

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := string(link.Destination)
		if isExternalURI(dest) {
			return ast.WalkContinue, nil
		}
		target, fragment, _ := strings.Cut(dest, "#")
		if !strings.HasSuffix(target, ".md") {
			return ast.WalkContinue, nil
		}

		targetDoc := path.Clean(path.Join(path.Dir(docname), strings.TrimSuffix(target, ".md")))
		uri := util.RelativeURI(b.TargetURI(docname), b.TargetURI(targetDoc))
		if fragment != "" {
			uri += "#" + fragment
		}
		link.Destination = []byte(uri)
		return ast.WalkContinue, nil
	})
}

func isExternalURI(dest string) bool {
	return dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") ||
		strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:")
}

// directiveTransformer replaces fenced blocks whose info string is `{name}`
// with the nodes returned by the directive registered under name.
type directiveTransformer struct {
	app *App
}

func newDirectiveTransformer(a *App) parser.ASTTransformer {
	return &directiveTransformer{app: a}
}

func (t *directiveTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	docname, _ := pc.Get(docNameKey).(string)

	// Collect first: the tree must not change under Walk.
	var blocks []*ast.FencedCodeBlock
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if fcb, ok := n.(*ast.FencedCodeBlock); ok && directiveName(fcb, source) != "" {
			blocks = append(blocks, fcb)
		}
		return ast.WalkContinue, nil
	})

	for _, block := range blocks {
		name := directiveName(block, source)
		d, ok := t.app.directives[name]
		if !ok {
			t.app.Logger.Warn("Unknown directive", "doc", docname, "directive", name)
			continue
		}
		nodes := d.Run(&DirectiveContext{
			Name:    name,
			DocName: docname,
			Content: blockLines(block, source),
			Logger:  t.app.Logger,
		})

		parent := block.Parent()
		for _, n := range nodes {
			parent.InsertBefore(parent, block, n)
		}
		parent.RemoveChild(parent, block)
	}
}

func directiveName(block *ast.FencedCodeBlock, source []byte) string {
	if block.Info == nil {
		return ""
	}
	lang := string(block.Language(source))
	if len(lang) > 2 && strings.HasPrefix(lang, "{") && strings.HasSuffix(lang, "}") {
		return lang[1 : len(lang)-1]
	}
	return ""
}

func blockLines(block *ast.FencedCodeBlock, source []byte) []string {
	lines := block.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(source)), "\r\n"))
	}
	return out
}
