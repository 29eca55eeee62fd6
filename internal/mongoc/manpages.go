package mongoc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"mongocdocs/internal/builder"
	"mongocdocs/internal/config"

	"github.com/spf13/afero"
)

// ManSection is the manual section of every collected page.
const ManSection = 3

// ErrUnresolvedDocument means a source file carrying a man page marker has
// no docname. It aborts the build.
var ErrUnresolvedDocument = errors.New("cannot resolve docname")

var manPageLine = regexp.MustCompile(`^:man_page:\s+(.+)`)

// ManPageName returns the value of the first `:man_page:` line in r.
// Lines may be of any length.
func ManPageName(r io.Reader) (string, bool, error) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}
		line = strings.TrimRight(line, "\r\n")
		if m := manPageLine.FindStringSubmatch(line); m != nil {
			return m[1], true, nil
		}
		if err != nil {
			return "", false, nil
		}
	}
}

// CollectManPages scans the source tree once and appends an entry to
// cfg.ManPages for every document declaring a man page.
func CollectManPages(app *builder.App, cfg *config.SiteConfig) error {
	proj := app.Project()
	// A missing source tree has no man pages.
	if ok, err := afero.DirExists(app.Fs, proj.SrcDir()); err != nil || !ok {
		return err
	}
	return afero.Walk(app.Fs, proj.SrcDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if _, ok := proj.SourceSuffix(path); !ok {
			return nil
		}

		name, ok, err := fileManPageName(app.Fs, path)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if !ok {
			return nil
		}

		docname := proj.Path2Doc(path)
		if docname == "" {
			return fmt.Errorf("%w: %s", ErrUnresolvedDocument, path)
		}
		cfg.ManPages = append(cfg.ManPages, config.ManPage{
			DocName: docname,
			Name:    name,
			Authors: []string{cfg.Author},
			Section: ManSection,
		})
		return nil
	})
}

func fileManPageName(fs afero.Fs, path string) (string, bool, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", false, err
	}
	defer f.Close()
	return ManPageName(f)
}
