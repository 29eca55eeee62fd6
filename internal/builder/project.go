// internal/builder/project.go
package builder

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Project maps source files to docnames and back. A docname is the
// slash-separated path of a source file relative to the source directory,
// without its suffix.
type Project struct {
	fs       afero.Fs
	srcdir   string
	suffixes []string
	docs     map[string]string // docname -> suffix
}

func NewProject(fs afero.Fs, srcdir string, suffixes []string) *Project {
	if len(suffixes) == 0 {
		suffixes = []string{".md"}
	}
	return &Project{
		fs:       fs,
		srcdir:   filepath.Clean(srcdir),
		suffixes: suffixes,
		docs:     make(map[string]string),
	}
}

func (p *Project) SrcDir() string { return p.srcdir }

// SourceSuffix returns the recognised suffix of filename, if any.
func (p *Project) SourceSuffix(filename string) (string, bool) {
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(filename, suffix) {
			return suffix, true
		}
	}
	return "", false
}

// Discover walks the source directory and returns every docname, sorted.
func (p *Project) Discover() ([]string, error) {
	var names []string
	err := afero.Walk(p.fs, p.srcdir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if doc := p.Path2Doc(path); doc != "" {
			names = append(names, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Path2Doc returns the docname of filename, or "" when the file lies outside
// the source directory or does not carry a source suffix.
func (p *Project) Path2Doc(filename string) string {
	rel, err := filepath.Rel(p.srcdir, filepath.Clean(filename))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	suffix, ok := p.SourceSuffix(rel)
	if !ok {
		return ""
	}
	doc := filepath.ToSlash(strings.TrimSuffix(rel, suffix))
	if doc == "" {
		return ""
	}
	p.docs[doc] = suffix
	return doc
}

// Doc2Path returns the source path of docname. With basedir the path is
// joined onto the source directory.
func (p *Project) Doc2Path(docname string, basedir bool) string {
	suffix, ok := p.docs[docname]
	if !ok {
		suffix = p.suffixes[0]
	}
	rel := filepath.FromSlash(docname) + suffix
	if basedir {
		return filepath.Join(p.srcdir, rel)
	}
	return rel
}
