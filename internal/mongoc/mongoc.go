// Package mongoc is the build extension shared by the libmongoc and libbson
// documentation trees. It collects man pages from `:man_page:` markers,
// injects the analytics snippet, provides the versionlist directive and
// writes flat redirect stubs for the dirhtml builder.
package mongoc

import (
	"mongocdocs/internal/builder"
	"mongocdocs/internal/config"
)

// Author is credited on every collected man page.
const Author = "MongoDB, Inc"

// Extension registers the mongoc hooks with a builder.App.
type Extension struct{}

func (Extension) Setup(app *builder.App) error { return Setup(app) }

// Setup connects every hook, declares the analytics value and adds the
// versionlist directive.
func Setup(app *builder.App) error {
	app.ConnectConfigInited(ApplyCommonConfig)
	app.ConnectConfigInited(CollectManPages)
	app.ConnectPageContext(GenerateRedirects)
	app.ConnectPageContext(InjectAnalytics)

	// Build with -D analytics=1 to enable analytics.
	if err := app.AddConfigValue("analytics", false, "html"); err != nil {
		return err
	}
	return app.AddDirective("versionlist", VersionList{})
}

// ApplyCommonConfig fills the settings every mongoc docs tree shares,
// leaving anything site.yaml or -D already set.
func ApplyCommonConfig(app *builder.App, cfg *config.SiteConfig) error {
	if cfg.Author == "" {
		cfg.Author = Author
	}
	if cfg.NeedsVersion == "" {
		cfg.NeedsVersion = "0.1"
	}
	if cfg.SmartQuotes == nil {
		cfg.SmartQuotes = config.BoolPtr(false)
	}
	if cfg.ShowSourceLink == nil {
		cfg.ShowSourceLink = config.BoolPtr(false)
	}
	if cfg.CopySource == nil {
		cfg.CopySource = config.BoolPtr(false)
	}
	return nil
}
