// Package config loads the refbuilder configuration file and resolves it into
// the plain Options value handed to every component at construction time.
package config

import (
	"fmt"
	"os"
	"text/template"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk YAML shape of the configuration.
type Config struct {
	PackageDir string          `yaml:"package_dir"`
	Output     OutputConfig    `yaml:"output"`
	Site       SiteConfig      `yaml:"site"`
	Pages      PagesConfig     `yaml:"pages"`
	Manual     ManualConfig    `yaml:"manual"`
	Templates  TemplatesConfig `yaml:"templates,omitempty"`
}

// OutputConfig controls where and how the site is written.
type OutputConfig struct {
	Directory    string `yaml:"directory"`
	WebsiteFiles string `yaml:"website_files,omitempty"` // optional static dir copied verbatim
}

// SiteConfig carries presentation-level settings.
type SiteConfig struct {
	PkgRoot          string `yaml:"pkg_root,omitempty"` // URL prefix for generated links
	MaxSummaryLength int    `yaml:"max_summary_length,omitempty"`
}

// PagesConfig gates optional output pages.
type PagesConfig struct {
	Overview     *bool `yaml:"overview,omitempty"`
	Alphabetical *bool `yaml:"alphabetical,omitempty"`
	Index        *bool `yaml:"index,omitempty"`
	News         *bool `yaml:"news,omitempty"`
	License      *bool `yaml:"license,omitempty"`
	PackageDoc   *bool `yaml:"package_doc,omitempty"`
}

// ManualConfig configures manual conversion.
type ManualConfig struct {
	Converter string `yaml:"converter,omitempty"` // external program; empty = built-in Markdown
}

// TemplatesConfig holds optional page fragment overrides. Each fragment is a
// text/template body over {Name, PkgRoot}.
type TemplatesConfig struct {
	Header string `yaml:"header,omitempty"`
	Title  string `yaml:"title,omitempty"`
	Footer string `yaml:"footer,omitempty"`
}

// PageFlags is the resolved form of PagesConfig.
type PageFlags struct {
	Overview     bool
	Alphabetical bool
	Index        bool
	News         bool
	License      bool
	PackageDoc   bool
}

// Options is the fully resolved configuration passed into components. No
// component reaches back into a lookup table at runtime.
type Options struct {
	PackageDir       string
	OutputDir        string
	WebsiteFiles     string
	PkgRoot          string
	MaxSummaryLength int
	ConverterProgram string
	Include          PageFlags

	// Parsed fragment overrides; nil selects the embedded default.
	Header *template.Template
	Title  *template.Template
	Footer *template.Template
}

const defaultMaxSummaryLength = 80

// Load reads, expands, and resolves the configuration file.
func Load(configPath string) (*Options, error) {
	// Optional .env layering; absence is not an error.
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment variables from .env")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	// #nosec G304 -- configPath is the operator-supplied configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return Resolve(&cfg)
}

// Resolve applies defaults and parses template fragments.
func Resolve(cfg *Config) (*Options, error) {
	if cfg.PackageDir == "" {
		return nil, fmt.Errorf("package_dir must be set")
	}
	opts := &Options{
		PackageDir:       cfg.PackageDir,
		OutputDir:        cfg.Output.Directory,
		WebsiteFiles:     cfg.Output.WebsiteFiles,
		PkgRoot:          cfg.Site.PkgRoot,
		MaxSummaryLength: cfg.Site.MaxSummaryLength,
		ConverterProgram: cfg.Manual.Converter,
		Include: PageFlags{
			Overview:     flag(cfg.Pages.Overview, true),
			Alphabetical: flag(cfg.Pages.Alphabetical, true),
			Index:        flag(cfg.Pages.Index, true),
			News:         flag(cfg.Pages.News, true),
			License:      flag(cfg.Pages.License, true),
			PackageDoc:   flag(cfg.Pages.PackageDoc, true),
		},
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "./site"
	}
	if opts.MaxSummaryLength == 0 {
		opts.MaxSummaryLength = defaultMaxSummaryLength
	}

	var err error
	if opts.Header, err = parseFragment("header", cfg.Templates.Header); err != nil {
		return nil, err
	}
	if opts.Title, err = parseFragment("title", cfg.Templates.Title); err != nil {
		return nil, err
	}
	if opts.Footer, err = parseFragment("footer", cfg.Templates.Footer); err != nil {
		return nil, err
	}
	return opts, nil
}

func flag(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func parseFragment(name, body string) (*template.Template, error) {
	if body == "" {
		return nil, nil
	}
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return tpl, nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		PackageDir: "./mypackage",
		Output: OutputConfig{
			Directory: "./site",
		},
		Site: SiteConfig{
			MaxSummaryLength: defaultMaxSummaryLength,
		},
		Manual: ManualConfig{
			Converter: "", // leave empty to convert Markdown manuals in-process
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// #nosec G306 -- configuration files are not secrets
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
