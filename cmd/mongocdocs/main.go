// cmd/mongocdocs/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mongocdocs/internal/builder"
	"mongocdocs/internal/config"
	"mongocdocs/internal/mongoc"
	"mongocdocs/internal/scaffold"
	"mongocdocs/internal/server"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const (
	templateDir = "templates"
	staticDir   = "static"
	buildDir    = "_build"
)

type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"site.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the documentation tree"`
	Serve ServeCmd `cmd:"" help:"Run a local preview server with auto-rebuild"`
	Init  InitCmd  `cmd:"" help:"Scaffold a new documentation tree"`
	New   NewCmd   `cmd:"" help:"Create a new page from the default archetype"`
}

// AfterApply runs after flag parsing and sets up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// BuildFlags are shared by build and serve.
type BuildFlags struct {
	Builder string            `short:"b" help:"Builder to run (html, dirhtml, man)" enum:"html,dirhtml,man" default:"dirhtml"`
	Define  map[string]string `short:"D" help:"Override a configuration value (key=value)"`
	Output  string            `short:"o" help:"Output directory (default _build/<builder>)"`
	Unsafe  bool              `help:"Disable HTML sanitization"`
	Keep    bool              `short:"k" name:"keep-going" help:"Report all document failures instead of stopping at the first"`
}

func (f BuildFlags) outDir() string {
	if f.Output != "" {
		return f.Output
	}
	return filepath.Join(buildDir, f.Builder)
}

// newApp loads the site config and returns an App with the mongoc extension set up.
func (f BuildFlags) newApp(root *CLI, clean bool) (*builder.App, error) {
	cfg, err := config.LoadSiteConfig(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyOverrides(f.Define); err != nil {
		return nil, err
	}

	app, err := builder.NewApp(builder.AppOptions{
		Config:      &cfg,
		Fs:          afero.NewOsFs(),
		OutDir:      f.outDir(),
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		BuilderName: f.Builder,
		Logger:      slog.Default(),
		Build: builder.BuildOptions{
			CleanDestination: clean,
			Unsafe:           f.Unsafe,
			KeepGoing:        f.Keep,
		},
	})
	if err != nil {
		return nil, err
	}
	if err := app.Setup(mongoc.Extension{}); err != nil {
		return nil, err
	}
	return app, nil
}

type BuildCmd struct {
	BuildFlags `embed:""`
	Clean      bool `help:"Remove the output directory contents first"`
}

func (b *BuildCmd) Run(ctx context.Context, root *CLI) error {
	fmt.Printf("--- Building %s ---\n", b.Builder)
	app, err := b.newApp(root, b.Clean)
	if err != nil {
		return err
	}
	n, err := app.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Printf("✅ Success! Generated %d pages into %s.\n", n, app.OutDir)
	return nil
}

type ServeCmd struct {
	BuildFlags `embed:""`
	Port       int `short:"p" help:"Port for the preview server" default:"1313"`
}

func (s *ServeCmd) Run(ctx context.Context, root *CLI) error {
	watch, err := s.watchPaths(root)
	if err != nil {
		return err
	}

	build := func(ctx context.Context, clean bool) error {
		// A fresh App per build picks up edits to site.yaml and .env.
		_ = godotenv.Overload()
		app, err := s.newApp(root, clean)
		if err != nil {
			return err
		}
		n, err := app.Build(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("📄 %d pages generated.\n", n)
		return nil
	}

	return server.Run(ctx, server.Options{
		Port:   s.Port,
		Root:   s.outDir(),
		Watch:  watch,
		Logger: slog.Default(),
	}, build)
}

// watchPaths lists what serve watches, with -D overrides applied.
func (s *ServeCmd) watchPaths(root *CLI) ([]string, error) {
	cfg, err := config.LoadSiteConfig(root.Config)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyOverrides(s.Define); err != nil {
		return nil, err
	}
	return []string{cfg.SourceDir, templateDir, staticDir, root.Config, ".env"}, nil
}

type InitCmd struct {
	Dir string `arg:"" help:"Directory to create" default:"."`
}

func (i *InitCmd) Run() error {
	return scaffold.CreateNewSite(afero.NewOsFs(), i.Dir)
}

type NewCmd struct {
	Doc     string `arg:"" help:"Docname of the new page, e.g. api/mongoc_client_t"`
	ManPage bool   `short:"m" name:"man-page" help:"Mark the page as a manual page"`
}

func (n *NewCmd) Run(root *CLI) error {
	cfg, err := config.LoadSiteConfig(root.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	_, err = scaffold.CreateNewPage(afero.NewOsFs(), cfg, n.Doc, n.ManPage)
	return err
}

func main() {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mongocdocs"),
		kong.Description("Build the libmongoc and libbson documentation."),
		kong.UsageOnError(),
		kong.Vars{"version": builder.Version},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
