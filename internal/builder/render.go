// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"
	"regexp"
	"unicode/utf8"

	"mongocdocs/internal/config"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

var (
	htmlSanitizer = bluemonday.UGCPolicy()
	docinfoLine   = regexp.MustCompile(`^:([\w-]+):(?:\s+(.*))?$`)
	docNameKey    = parser.NewContextKey()
)

func newMarkdown(a *App) goldmark.Markdown {
	exts := []goldmark.Extender{extension.GFM, extension.Footnote}
	if config.Flag(a.Config.SmartQuotes, true) {
		exts = append(exts, extension.Typographer)
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newDirectiveTransformer(a), 100),
				util.Prioritized(newMDLinkTransformer(a), 200),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// splitFrontMatter separates YAML front matter and leading docinfo fields
// from the markdown body.
func splitFrontMatter(raw []byte) (PageMeta, []byte, error) {
	meta := PageMeta{}
	body := raw

	if bytes.HasPrefix(raw, []byte("---\n")) || bytes.HasPrefix(raw, []byte("---\r\n")) {
		parts := bytes.SplitN(raw, []byte("---"), 3)
		if len(parts) >= 3 {
			if err := yaml.Unmarshal(parts[1], &meta); err != nil {
				return PageMeta{}, nil, fmt.Errorf("failed to parse front matter: %w", err)
			}
			body = parts[2]
		}
	}

	meta.Fields, body = splitDocinfo(body)
	return meta, body, nil
}

// splitDocinfo consumes a leading block of `:name: value` lines.
func splitDocinfo(body []byte) (map[string]string, []byte) {
	fields := make(map[string]string)
	rest := body
	for len(rest) > 0 {
		line, next := rest, []byte(nil)
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i], rest[i+1:]
		}
		line = bytes.TrimRight(line, "\r")

		if len(bytes.TrimSpace(line)) == 0 {
			if len(fields) > 0 {
				break
			}
			rest = next
			continue
		}
		m := docinfoLine.FindSubmatch(line)
		if m == nil {
			break
		}
		fields[string(m[1])] = string(m[2])
		rest = next
	}
	if len(fields) == 0 {
		return fields, body
	}
	return fields, rest
}

// ReadDoc loads and renders one document.
func (a *App) ReadDoc(name string) (*Document, error) {
	path := a.project.Doc2Path(name, true)
	raw, err := afero.ReadFile(a.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("content file is not valid UTF-8: %s", path)
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to process content for %s: %w", path, err)
	}

	pc := parser.NewContext()
	pc.Set(docNameKey, name)
	root := a.markdown.Parser().Parse(text.NewReader(body), parser.WithContext(pc))

	var htmlBuffer bytes.Buffer
	if err := a.markdown.Renderer().Render(&htmlBuffer, body, root); err != nil {
		return nil, fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	out := htmlBuffer.String()
	if !a.opts.Unsafe {
		out = htmlSanitizer.Sanitize(out)
	}

	title := meta.Title
	if title == "" {
		title = firstHeading(root, body)
	}
	if title == "" {
		title = name
	}

	return &Document{
		Name:       name,
		SourcePath: path,
		Source:     raw,
		Body:       body,
		Meta:       meta,
		Title:      title,
		AST:        root,
		HTML:       out,
	}, nil
}

func firstHeading(root ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = nodeText(h, source)
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func nodeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
