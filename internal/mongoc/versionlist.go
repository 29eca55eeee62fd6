package mongoc

import (
	"fmt"
	"os"
	"strings"

	"mongocdocs/internal/builder"

	"github.com/yuin/goldmark/ast"
)

const (
	releaseURLFmt     = "https://www.mongoc.org/%s/%s/index.html"
	developmentURLFmt = "https://s3.amazonaws.com/mciuploads/mongo-c-driver/docs/%s/latest/index.html"
)

// VersionList is the versionlist directive. Its body names a library, and
// the versions come from the comma-separated <LIBRARY>_VERSION_LIST variable.
//
//	```{versionlist}
//	libmongoc
//	```
//
// Run returns the two link paragraphs and the bullet list as siblings that
// replace the block in place; they are not nested under a header paragraph.
type VersionList struct {
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

func (v VersionList) Run(dc *builder.DirectiveContext) []ast.Node {
	libname := dc.Arg(0)
	if libname != "libmongoc" && libname != "libbson" {
		dc.Logger.Warn("versionlist must be libmongoc or libbson", "doc", dc.DocName, "library", libname)
		return nil
	}

	lookup := v.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	envName := strings.ToUpper(libname) + "_VERSION_LIST"
	value, ok := lookup(envName)
	if !ok {
		dc.Logger.Warn(envName+" not set, not generating version list", "doc", dc.DocName)
		return nil
	}
	versions := strings.Split(value, ",")

	latest := linkParagraph(fmt.Sprintf("Latest Release (%s)", versions[0]), fmt.Sprintf(releaseURLFmt, libname, versions[0]))
	development := linkParagraph("Current Development (master)", fmt.Sprintf(developmentURLFmt, libname))

	list := ast.NewList('*')
	list.IsTight = true
	for _, version := range versions {
		item := ast.NewListItem(2)
		item.AppendChild(item, linkParagraph(version, fmt.Sprintf(releaseURLFmt, libname, version)))
		list.AppendChild(list, item)
	}
	return []ast.Node{latest, development, list}
}

func linkParagraph(label, uri string) *ast.Paragraph {
	link := ast.NewLink()
	link.Destination = []byte(uri)
	link.AppendChild(link, ast.NewString([]byte(label)))

	p := ast.NewParagraph()
	p.AppendChild(p, link)
	return p
}
