package mongoc

import (
	_ "embed"
	"html/template"
	"path/filepath"
	"strings"

	"mongocdocs/internal/builder"
)

//go:embed redirect.t.html
var redirectTemplateText string

var redirectTemplate = template.Must(builder.ParseTemplate("redirect.t.html", redirectTemplateText))

// GenerateRedirects writes <slug>.html next to a dirhtml page's <slug>/
// directory, so flat URLs keep working.
func GenerateRedirects(app *builder.App, page *builder.Page) error {
	b, ok := app.Builder().(*builder.DirHTMLBuilder)
	if !ok {
		return nil
	}
	if _, ok := page.Context["writing-redirect"]; ok {
		return nil
	}
	if page.Name == "index" || strings.HasSuffix(page.Name, ".index") {
		return nil
	}

	outIndexHTML := b.OutFilename(page.Name)
	slug := filepath.Base(filepath.Dir(outIndexHTML))
	redirectFile := filepath.Join(filepath.Dir(filepath.Dir(outIndexHTML)), slug+".html")

	ctx := builder.PageContext{
		"target":           page.Name,
		"target_uri":       slug + "/",
		"writing-redirect": 1,
	}
	if err := b.HandlePage(app, "redirect-for-"+page.Name, ctx, redirectTemplate, redirectFile, nil); err != nil {
		app.Logger.Warn("Failed to write redirect", "page", page.Name, "file", redirectFile, "error", err)
		return nil
	}

	var path string
	if proj := app.Project(); proj != nil {
		path = proj.Doc2Path(page.Name, false)
	}
	app.Logger.Debug("Wrote redirect: "+path+" -> "+page.Name, "file", redirectFile)
	return nil
}
