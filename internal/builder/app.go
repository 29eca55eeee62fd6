// internal/builder/app.go
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"mongocdocs/internal/config"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
)

// Version is the tool version that needs_version is checked against.
const Version = "0.3.0"

var (
	// ErrDuplicateConfigValue is returned when two extensions declare the same value.
	ErrDuplicateConfigValue = errors.New("config value already present")
	// ErrDuplicateDirective is returned when a directive name is registered twice.
	ErrDuplicateDirective = errors.New("directive already registered")
	// ErrVersionRequirement is returned when needs_version is not satisfied.
	ErrVersionRequirement = errors.New("project needs a newer version")
)

// Extension plugs hooks, config values and directives into an App.
type Extension interface {
	Setup(app *App) error
}

// ExtensionFunc adapts a plain function to the Extension interface.
type ExtensionFunc func(app *App) error

func (f ExtensionFunc) Setup(app *App) error { return f(app) }

// ConfigInitedFunc runs once, after config values are initialised and before any page is read.
type ConfigInitedFunc func(app *App, cfg *config.SiteConfig) error

// PageContextFunc runs for every page right before its template is rendered.
type PageContextFunc func(app *App, page *Page) error

type configValue struct {
	def     interface{}
	rebuild string
}

type AppOptions struct {
	Config      *config.SiteConfig
	Fs          afero.Fs
	OutDir      string
	TemplateDir string
	StaticDir   string
	BuilderName string
	Logger      *slog.Logger
	Build       BuildOptions
}

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool
	// KeepGoing logs per-document failures and reports them together at the end.
	KeepGoing        bool
}

// App is the build host. It owns the configuration for one build invocation
// and dispatches lifecycle events to the registered hooks, strictly in order.
type App struct {
	Config *config.SiteConfig
	Fs     afero.Fs
	Logger *slog.Logger

	SrcDir      string
	OutDir      string
	TemplateDir string
	StaticDir   string

	opts     BuildOptions
	builder  Builder
	project  *Project
	markdown goldmark.Markdown

	configValues map[string]configValue
	directives   map[string]Directive
	configInited []ConfigInitedFunc
	pageContext  []PageContextFunc
	inited       bool
}

// NewApp creates an App for the given builder name.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("builder: a site config is required")
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BuilderName == "" {
		opts.BuilderName = "html"
	}
	b, err := NewBuilder(opts.BuilderName, opts.OutDir)
	if err != nil {
		return nil, err
	}

	srcDir := opts.Config.SourceDir
	if srcDir == "" {
		srcDir = config.DefaultSourceDir
	}

	return &App{
		Config:       opts.Config,
		Fs:           opts.Fs,
		Logger:       opts.Logger,
		SrcDir:       filepath.Clean(srcDir),
		OutDir:       opts.OutDir,
		TemplateDir:  opts.TemplateDir,
		StaticDir:    opts.StaticDir,
		opts:         opts.Build,
		builder:      b,
		configValues: make(map[string]configValue),
		directives:   make(map[string]Directive),
	}, nil
}

// Builder returns the active builder.
func (a *App) Builder() Builder { return a.builder }

// Project returns the source project. It is available once Init has run.
func (a *App) Project() *Project { return a.project }

// Setup runs each extension's registration function.
func (a *App) Setup(exts ...Extension) error {
	for _, ext := range exts {
		if err := ext.Setup(a); err != nil {
			return fmt.Errorf("extension setup failed: %w", err)
		}
	}
	return nil
}

func (a *App) ConnectConfigInited(fn ConfigInitedFunc) {
	a.configInited = append(a.configInited, fn)
}

func (a *App) ConnectPageContext(fn PageContextFunc) {
	a.pageContext = append(a.pageContext, fn)
}

// AddConfigValue declares an extension value and its default. rebuild names the
// builder family the value affects ("html", "env", ...).
func (a *App) AddConfigValue(name string, def interface{}, rebuild string) error {
	if _, ok := a.configValues[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateConfigValue, name)
	}
	a.configValues[name] = configValue{def: def, rebuild: rebuild}
	return nil
}

// AddDirective registers a fenced-block directive under name.
func (a *App) AddDirective(name string, d Directive) error {
	if _, ok := a.directives[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateDirective, name)
	}
	a.directives[name] = d
	return nil
}

// Init fills config defaults, emits config-inited and checks needs_version.
// It runs at most once per App.
func (a *App) Init() error {
	if a.inited {
		return nil
	}
	for name, v := range a.configValues {
		a.Config.SetDefault(name, v.def)
	}
	a.project = NewProject(a.Fs, a.SrcDir, a.Config.SourceSuffix)

	for _, fn := range a.configInited {
		if err := fn(a, a.Config); err != nil {
			return fmt.Errorf("config-inited: %w", err)
		}
	}

	if err := checkNeedsVersion(a.Config.NeedsVersion); err != nil {
		return err
	}

	a.markdown = newMarkdown(a)
	a.inited = true
	return nil
}

func checkNeedsVersion(needs string) error {
	if needs == "" {
		return nil
	}
	c, err := semver.NewConstraint(">= " + needs)
	if err != nil {
		return fmt.Errorf("invalid needs_version %q: %w", needs, err)
	}
	if !c.Check(semver.MustParse(Version)) {
		return fmt.Errorf("%w: needs %s, running %s", ErrVersionRequirement, needs, Version)
	}
	return nil
}

// EmitPageContext runs the page-context hooks in registration order.
func (a *App) EmitPageContext(page *Page) error {
	for _, fn := range a.pageContext {
		if err := fn(a, page); err != nil {
			return fmt.Errorf("html-page-context for %s: %w", page.Name, err)
		}
	}
	return nil
}

// Build reads every document and hands it to the active builder. It returns
// the number of documents written.
func (a *App) Build(ctx context.Context) (int, error) {
	if err := a.Init(); err != nil {
		return 0, err
	}
	if err := a.Fs.MkdirAll(a.OutDir, 0755); err != nil {
		return 0, err
	}
	if a.opts.CleanDestination {
		if err := a.cleanOutput(); err != nil {
			return 0, err
		}
	}
	if err := a.builder.Init(a); err != nil {
		return 0, fmt.Errorf("%s builder init: %w", a.builder.Name(), err)
	}

	docnames, err := a.project.Discover()
	if err != nil {
		return 0, err
	}

	written := 0
	var failed []error
	for _, name := range docnames {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		ok, err := a.buildDoc(name)
		if err != nil {
			if !a.opts.KeepGoing {
				return written, err
			}
			a.Logger.Error("Document failed", "doc", name, "error", err)
			failed = append(failed, err)
			continue
		}
		if ok {
			written++
		}
	}

	if a.builder.Name() != "man" {
		if err := a.copyStaticAssets(); err != nil {
			return written, err
		}
	}
	if err := a.builder.Finish(a); err != nil {
		return written, fmt.Errorf("%s builder finish: %w", a.builder.Name(), err)
	}
	if len(failed) > 0 {
		return written, fmt.Errorf("%d documents failed: %w", len(failed), errors.Join(failed...))
	}
	return written, nil
}

// buildDoc reads and writes one document. Drafts report false.
func (a *App) buildDoc(name string) (bool, error) {
	doc, err := a.ReadDoc(name)
	if err != nil {
		return false, err
	}
	if doc.Meta.Draft && !isExceptionPage(name) {
		a.Logger.Debug("Skipping draft", "doc", name)
		return false, nil
	}
	if err := a.builder.WriteDoc(a, doc); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", name, err)
	}
	return true, nil
}

func (a *App) cleanOutput() error {
	a.Logger.Debug("Cleaning destination directory", "dir", a.OutDir)
	entries, err := afero.ReadDir(a.Fs, a.OutDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := a.Fs.RemoveAll(filepath.Join(a.OutDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// isExceptionPage checks for pages that are always built, even as drafts.
func isExceptionPage(docname string) bool {
	return docname == "index"
}
