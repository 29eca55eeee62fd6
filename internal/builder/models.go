// internal/builder/models.go
package builder

import (
	"github.com/yuin/goldmark/ast"
)

// PageMeta holds metadata from front matter. Fields collects rST-style
// `:name: value` docinfo lines; Params keeps arbitrary YAML keys.
type PageMeta struct {
	Title       string                 `yaml:"title"`
	Draft       bool                   `yaml:"draft"`
	Description string                 `yaml:"description"`
	Fields      map[string]string      `yaml:"-"`
	Params      map[string]interface{} `yaml:",inline"`
}

// Document is one parsed source file.
type Document struct {
	Name       string
	SourcePath string
	Source     []byte // full file content
	Body       []byte // markdown without front matter
	Meta       PageMeta
	Title      string
	AST        ast.Node
	HTML       string
}

// PageContext is the per-page template context handed to page-context hooks.
type PageContext map[string]interface{}

// Page is what page-context hooks receive. Doc is nil for pages that are not
// backed by a document, such as redirect stubs.
type Page struct {
	Name     string
	Template string
	Context  PageContext
	Doc      ast.Node
}
