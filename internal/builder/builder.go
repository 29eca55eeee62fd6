// internal/builder/builder.go
package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Builder turns documents into one output format.
type Builder interface {
	Name() string
	// OutFilename is the file a page is written to.
	OutFilename(pagename string) string
	// TargetURI is the site-relative URI a page is served at.
	TargetURI(pagename string) string
	Init(app *App) error
	WriteDoc(app *App, doc *Document) error
	Finish(app *App) error
}

// NewBuilder returns the builder registered under name.
func NewBuilder(name, outDir string) (Builder, error) {
	switch name {
	case "html":
		return &HTMLBuilder{outDir: outDir}, nil
	case "dirhtml":
		return &DirHTMLBuilder{HTMLBuilder: &HTMLBuilder{outDir: outDir, dirStyle: true}}, nil
	case "man":
		return &ManBuilder{outDir: outDir}, nil
	default:
		return nil, fmt.Errorf("unknown builder %q (want html, dirhtml or man)", name)
	}
}

// copyStaticAssets copies files from the static directory to the output directory.
func (a *App) copyStaticAssets() error {
	if a.StaticDir == "" {
		return nil
	}
	if ok, err := afero.DirExists(a.Fs, a.StaticDir); err != nil || !ok {
		return err
	}
	// Extensions considered static assets.
	allowedExts := map[string]bool{
		".css": true, ".js": true, ".txt": true, ".svg": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".ico": true, ".woff": true, ".woff2": true,
	}
	return afero.Walk(a.Fs, a.StaticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !allowedExts[filepath.Ext(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(a.StaticDir, path)
		if err != nil {
			return err
		}
		return copyFile(a.Fs, path, filepath.Join(a.OutDir, "_static", rel))
	})
}

func copyFile(fs afero.Fs, srcPath, dest string) error {
	if err := fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	src, err := fs.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := fs.Create(dest)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}
