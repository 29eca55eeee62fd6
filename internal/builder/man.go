package builder

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/spf13/afero"
)

// ManBuilder writes one roff page per entry in Config.ManPages.
type ManBuilder struct {
	outDir string
}

func (b *ManBuilder) Name() string { return "man" }

func (b *ManBuilder) OutFilename(pagename string) string {
	return filepath.Join(b.outDir, filepath.FromSlash(pagename))
}

func (b *ManBuilder) TargetURI(pagename string) string { return pagename }

func (b *ManBuilder) Init(app *App) error { return nil }

// WriteDoc is a no-op: man pages are written from the collected entries in Finish.
func (b *ManBuilder) WriteDoc(app *App, doc *Document) error { return nil }

func (b *ManBuilder) Finish(app *App) error {
	for _, entry := range app.Config.ManPages {
		path := app.project.Doc2Path(entry.DocName, true)
		raw, err := afero.ReadFile(app.Fs, path)
		if err != nil {
			return fmt.Errorf("failed to read man page source %s: %w", path, err)
		}
		_, body, err := splitFrontMatter(raw)
		if err != nil {
			return fmt.Errorf("failed to process content for %s: %w", path, err)
		}

		var src bytes.Buffer
		fmt.Fprintf(&src, "%% %s(%d) %s\n", entry.Name, entry.Section, entry.Description)
		fmt.Fprintf(&src, "%% %s\n\n", strings.Join(entry.Authors, ", "))
		src.Write(body)

		outfile := filepath.Join(b.outDir, fmt.Sprintf("%s.%d", entry.Name, entry.Section))
		if err := afero.WriteFile(app.Fs, outfile, md2man.Render(src.Bytes()), 0644); err != nil {
			return err
		}
		app.Logger.Debug("Wrote man page", "doc", entry.DocName, "file", outfile)
	}
	return nil
}
