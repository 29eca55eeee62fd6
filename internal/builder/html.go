// internal/builder/html.go
package builder

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"regexp"
	"strings"

	"mongocdocs/internal/config"
	"mongocdocs/internal/util"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/yuin/goldmark/ast"
)

//go:embed templates/default/*.html
var defaultTemplates embed.FS

var templateFuncs = template.FuncMap{
	// safe marks a context value as trusted HTML. Missing keys render as "".
	"safe": func(v interface{}) template.HTML {
		return template.HTML(cast.ToString(v))
	},
}

// HTMLBuilder writes one <page>.html per document. With dirStyle set it
// writes <page>/index.html instead; see DirHTMLBuilder.
type HTMLBuilder struct {
	outDir   string
	dirStyle bool
	tmpl     *template.Template
	minifier *minify.M
}

func (b *HTMLBuilder) Name() string { return "html" }

func (b *HTMLBuilder) OutFilename(pagename string) string {
	if b.dirStyle && !isIndexDoc(pagename) {
		return filepath.Join(b.outDir, filepath.FromSlash(pagename), "index.html")
	}
	return filepath.Join(b.outDir, filepath.FromSlash(pagename)+".html")
}

func (b *HTMLBuilder) TargetURI(pagename string) string {
	if !b.dirStyle {
		return pagename + ".html"
	}
	switch {
	case pagename == "index":
		return ""
	case strings.HasSuffix(pagename, "/index"):
		return strings.TrimSuffix(pagename, "index")
	default:
		return pagename + "/"
	}
}

func isIndexDoc(pagename string) bool {
	return pagename == "index" || strings.HasSuffix(pagename, "/index")
}

func (b *HTMLBuilder) Init(app *App) error {
	tmpl, err := LoadTemplates(app.Fs, app.TemplateDir, app.Config.Template)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	b.tmpl = tmpl

	if app.Config.Minify {
		m := minify.New()
		m.AddFunc("text/html", mhtml.Minify)
		m.AddFunc("text/css", css.Minify)
		m.AddFuncRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), js.Minify)
		b.minifier = m
	}
	return nil
}

func (b *HTMLBuilder) WriteDoc(app *App, doc *Document) error {
	ctx := PageContext{
		"title": doc.Title,
		"body":  doc.HTML,
	}
	if doc.Meta.Description != "" {
		ctx["description"] = doc.Meta.Description
	}

	if config.Flag(app.Config.CopySource, true) {
		rel := filepath.ToSlash(app.project.Doc2Path(doc.Name, false)) + ".txt"
		dest := filepath.Join(b.outDir, "_sources", filepath.FromSlash(rel))
		if err := app.Fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		if err := afero.WriteFile(app.Fs, dest, doc.Source, 0644); err != nil {
			return err
		}
		if config.Flag(app.Config.ShowSourceLink, true) {
			ctx["sourcename"] = "_sources/" + rel
		}
	}

	return b.HandlePage(app, doc.Name, ctx, nil, b.OutFilename(doc.Name), doc.AST)
}

// HandlePage fills the base context, emits html-page-context, renders tmpl
// (the site layout when nil) and writes the result to outfile.
func (b *HTMLBuilder) HandlePage(app *App, pagename string, ctx PageContext, tmpl *template.Template, outfile string, doc ast.Node) error {
	if ctx == nil {
		ctx = PageContext{}
	}
	if tmpl == nil {
		tmpl = b.tmpl
	}
	if tmpl == nil {
		return fmt.Errorf("no template loaded for %s", pagename)
	}

	rel, err := filepath.Rel(b.outDir, outfile)
	if err != nil {
		rel = filepath.Base(outfile)
	}
	ctx["pagename"] = pagename
	setDefault(ctx, "project", app.Config.Project)
	setDefault(ctx, "author", app.Config.Author)
	setDefault(ctx, "description", app.Config.Description)
	setDefault(ctx, "site_baseurl", app.Config.BaseURL)
	setDefault(ctx, "baseurl", util.ComputeBaseHref(rel))

	page := &Page{Name: pagename, Template: tmpl.Name(), Context: ctx, Doc: doc}
	if err := app.EmitPageContext(page); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "main", page.Context); err != nil {
		return fmt.Errorf("failed to render page %s: %w", pagename, err)
	}
	out := buf.Bytes()
	if b.minifier != nil {
		if out, err = b.minifier.Bytes("text/html", out); err != nil {
			return fmt.Errorf("failed to minify page %s: %w", pagename, err)
		}
	}

	if err := app.Fs.MkdirAll(filepath.Dir(outfile), 0755); err != nil {
		return err
	}
	return afero.WriteFile(app.Fs, outfile, out, 0644)
}

func (b *HTMLBuilder) Finish(app *App) error { return nil }

func setDefault(ctx PageContext, key string, v interface{}) {
	if _, ok := ctx[key]; !ok {
		ctx[key] = v
	}
}

// DirHTMLBuilder is the directory-style HTML builder: every page except index
// pages is written to <page>/index.html.
type DirHTMLBuilder struct {
	*HTMLBuilder
}

func (b *DirHTMLBuilder) Name() string { return "dirhtml" }

// LoadTemplates parses the layout, header and footer of a theme. A theme that
// does not exist under templateDir falls back to the built-in default.
func LoadTemplates(fs afero.Fs, templateDir, templateName string) (*template.Template, error) {
	dir := filepath.Join(templateDir, templateName)
	useDefault := templateDir == ""
	if !useDefault {
		exists, err := afero.Exists(fs, filepath.Join(dir, "layout.html"))
		if err != nil {
			return nil, err
		}
		useDefault = !exists
	}

	tmpl := template.New(templateName).Funcs(templateFuncs)
	for _, name := range TemplateFiles {
		var data []byte
		var err error
		if useDefault {
			data, err = DefaultTemplate(name)
		} else {
			data, err = afero.ReadFile(fs, filepath.Join(dir, name))
		}
		if err != nil {
			return nil, err
		}
		if _, err := tmpl.New(name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return tmpl, nil
}

// TemplateFiles lists the files a template set directory must provide.
var TemplateFiles = []string{"layout.html", "header.html", "footer.html"}

// DefaultTemplate returns the built-in copy of one of TemplateFiles.
func DefaultTemplate(name string) ([]byte, error) {
	return defaultTemplates.ReadFile("templates/default/" + name)
}

// ParseTemplate parses a standalone page template that defines "main".
func ParseTemplate(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).Parse(text)
}
