// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"text/template"

	"mongocdocs/internal/builder"
	"mongocdocs/internal/config"

	"github.com/spf13/afero"
)

const templateName = "mongoc"

// CreateNewSite lays out a new documentation tree under name.
func CreateNewSite(fs afero.Fs, name string) error {
	fmt.Println("Scaffolding new docs tree in:", name)
	mkdir := func(p string) error { return fs.MkdirAll(filepath.Join(name, p), 0o755) }
	writeFile := func(p string, content []byte) error {
		return afero.WriteFile(fs, filepath.Join(name, filepath.FromSlash(p)), content, 0o644)
	}

	dirs := []string{"content", "static/css", "templates/" + templateName, "archetypes"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":             siteYamlContent,
		".env":                  envContent,
		"content/index.md":      indexMdContent,
		"static/css/style.css":  staticCssContent,
		"archetypes/default.md": archetypeDefaultMdContent,
	}
	for p, content := range files {
		if err := writeFile(p, []byte(content)); err != nil {
			return fmt.Errorf("failed to write file %s: %w", p, err)
		}
	}
	for _, file := range builder.TemplateFiles {
		data, err := builder.DefaultTemplate(file)
		if err != nil {
			return err
		}
		if err := writeFile(path.Join("templates", templateName, file), data); err != nil {
			return fmt.Errorf("failed to write template %s: %w", file, err)
		}
	}

	fmt.Println("Docs tree scaffolded. You can now:")
	fmt.Println("  cd", name)
	fmt.Println("  mongocdocs build")
	fmt.Println("  mongocdocs serve")
	return nil
}

// CreateNewPage writes <source_dir>/<docName>.md from the default archetype.
// With manPage set the page carries a :man_page: marker named after the
// last docname segment.
func CreateNewPage(fs afero.Fs, cfg config.SiteConfig, docName string, manPage bool) (string, error) {
	srcDir := cfg.SourceDir
	if srcDir == "" {
		srcDir = config.DefaultSourceDir
	}
	out := filepath.Join(srcDir, filepath.FromSlash(docName)+".md")
	if exists, err := afero.Exists(fs, out); err != nil {
		return "", err
	} else if exists {
		return "", fmt.Errorf("%s: %w", out, os.ErrExist)
	}

	archetypePath := filepath.Join("archetypes", "default.md")
	tmplBytes, err := afero.ReadFile(fs, archetypePath)
	if err != nil {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}
	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title   string
		ManPage string
	}{
		Title: path.Base(docName),
	}
	if manPage {
		data.ManPage = data.Title
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := afero.WriteFile(fs, out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	fmt.Println("Created:", out)
	return out, nil
}

const siteYamlContent = `project: libmongoc
description: A Cross Platform MongoDB Client Library for C
baseurl: /
source_dir: content
template: mongoc
analytics: false
`

const envContent = `# Versions listed by the versionlist directive, newest first.
LIBMONGOC_VERSION_LIST=1.30.0,1.29.0,1.28.0
LIBBSON_VERSION_LIST=1.30.0,1.29.0,1.28.0
`

const indexMdContent = "# libmongoc\n\n" +
	"A Cross Platform MongoDB Client Library for C.\n\n" +
	"## Documentation for other versions\n\n" +
	"```{versionlist}\nlibmongoc\n```\n"

const archetypeDefaultMdContent = `{{ with .ManPage }}:man_page: {{ . }}

{{ end }}# {{ .Title }}

## Synopsis

## Description
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 860px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.header-line {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  margin-bottom: 2em;
}
.site-name { font-size: 0.9em; color: #777; text-decoration: none; }
main { margin-bottom: 3em; }
pre { background: #f4f4f4; padding: 0.75em; overflow-x: auto; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
ul { margin-left: 1.2em; padding-left: 1.2em; list-style-type: disc; }
li { margin-bottom: 0.25em; }
`
