// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// ManPage describes one manual page produced by the man builder.
type ManPage struct {
	DocName     string
	Name        string
	Description string
	Authors     []string
	Section     int
}

// SiteConfig holds the configuration from the site.yaml file.
// Keys that are not struct fields land in Params, which is also where
// extension-declared values live.
type SiteConfig struct {
	Project        string   `yaml:"project"`
	Author         string   `yaml:"author"`
	BaseURL        string   `yaml:"baseurl"`
	Description    string   `yaml:"description"`
	Template       string   `yaml:"template"`
	SourceDir      string   `yaml:"source_dir"`
	SourceSuffix   []string `yaml:"source_suffix"`
	NeedsVersion   string   `yaml:"needs_version"`
	SmartQuotes    *bool    `yaml:"smart_quotes"`
	ShowSourceLink *bool    `yaml:"html_show_sourcelink"`
	CopySource     *bool    `yaml:"html_copy_source"`
	Minify         bool     `yaml:"minify"`

	Params map[string]interface{} `yaml:",inline"`

	// ManPages is filled during config-inited and read by the man builder.
	ManPages []ManPage `yaml:"-"`
}

const (
	DefaultSourceDir = "content"
	DefaultTemplate  = "default"
)

// LoadSiteConfig reads and parses a site.yaml file, then fills path defaults.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := SiteConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

func (c *SiteConfig) fillDefaults() {
	if c.SourceDir == "" {
		c.SourceDir = DefaultSourceDir
	}
	if c.Template == "" {
		c.Template = DefaultTemplate
	}
	if len(c.SourceSuffix) == 0 {
		c.SourceSuffix = []string{".md"}
	}
	if c.Params == nil {
		c.Params = make(map[string]interface{})
	}
}

// Value returns an extension value by name.
func (c *SiteConfig) Value(name string) (interface{}, bool) {
	v, ok := c.Params[name]
	return v, ok
}

// Bool reports a loosely typed extension value as a boolean, so that
// "1", "true" and true all enable a flag.
func (c *SiteConfig) Bool(name string) bool {
	v, ok := c.Params[name]
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// SetDefault stores v under name unless a value is already present.
func (c *SiteConfig) SetDefault(name string, v interface{}) {
	if c.Params == nil {
		c.Params = make(map[string]interface{})
	}
	if _, ok := c.Params[name]; !ok {
		c.Params[name] = v
	}
}

// ApplyOverrides applies `-D key=value` style overrides on top of the file values.
func (c *SiteConfig) ApplyOverrides(overrides map[string]string) error {
	c.fillDefaults()
	for key, raw := range overrides {
		if err := c.override(key, raw); err != nil {
			return fmt.Errorf("invalid override %s=%q: %w", key, raw, err)
		}
	}
	return nil
}

func (c *SiteConfig) override(key, raw string) error {
	switch key {
	case "project":
		c.Project = raw
	case "author":
		c.Author = raw
	case "baseurl":
		c.BaseURL = raw
	case "description":
		c.Description = raw
	case "template":
		c.Template = raw
	case "source_dir":
		c.SourceDir = raw
	case "source_suffix":
		c.SourceSuffix = strings.Split(raw, ",")
	case "needs_version":
		c.NeedsVersion = raw
	case "smart_quotes":
		return setFlag(&c.SmartQuotes, raw)
	case "html_show_sourcelink":
		return setFlag(&c.ShowSourceLink, raw)
	case "html_copy_source":
		return setFlag(&c.CopySource, raw)
	case "minify":
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		c.Minify = b
	default:
		c.Params[key] = raw
	}
	return nil
}

func setFlag(dst **bool, raw string) error {
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return err
	}
	*dst = &b
	return nil
}

// Flag dereferences an optional boolean, falling back to def when unset.
func Flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
