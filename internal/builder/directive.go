package builder

import (
	"log/slog"

	"github.com/yuin/goldmark/ast"
)

// Directive produces nodes for a fenced directive block. Directives report
// problems through the logger and degrade to an empty result.
type Directive interface {
	Run(dc *DirectiveContext) []ast.Node
}

type DirectiveFunc func(dc *DirectiveContext) []ast.Node

func (f DirectiveFunc) Run(dc *DirectiveContext) []ast.Node { return f(dc) }

// DirectiveContext is the input of one directive invocation.
type DirectiveContext struct {
	Name    string
	DocName string
	Content []string
	Logger  *slog.Logger
}

// Arg returns the i-th content line, or "" when the body is shorter.
func (dc *DirectiveContext) Arg(i int) string {
	if i < 0 || i >= len(dc.Content) {
		return ""
	}
	return dc.Content[i]
}
