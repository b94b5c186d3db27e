package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "30s" or "5m" parse
// directly in the config file.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full server configuration. Every field has a default so
// an absent config file yields a runnable server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Cache   CacheConfig   `yaml:"cache"`
	Render  RenderConfig  `yaml:"render"`
}

// ServerConfig controls the listener and the absolute links the server emits.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	BaseURL string `yaml:"base_url"`
}

// SiteConfig holds presentation strings shared by templates and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// ContentConfig locates the Markdown sources and the assets around them.
type ContentConfig struct {
	Dir          string   `yaml:"dir"`
	AboutFile    string   `yaml:"about_file"`
	Ignore       []string `yaml:"ignore"`
	TemplatesDir string   `yaml:"templates_dir"`
	StaticDir    string   `yaml:"static_dir"`
}

// CacheConfig carries the server-side TTLs plus the browser-side
// Cache-Control duration, which is deliberately a separate knob.
type CacheConfig struct {
	FileTTL       Duration `yaml:"file_ttl"`
	ListTTL       Duration `yaml:"list_ttl"`
	PageTTL       Duration `yaml:"page_ttl"`
	BrowserMaxAge Duration `yaml:"browser_max_age"`
}

// RenderConfig sizes the worker pool used when the list cache rebuilds.
type RenderConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8008",
			BaseURL: "http://localhost:8008",
		},
		Site: SiteConfig{
			Title:       "Hello!",
			Description: "A personal blog.",
		},
		Content: ContentConfig{
			Dir:          "blog",
			AboutFile:    "about.md",
			Ignore:       []string{"about.md"},
			TemplatesDir: "templates",
			StaticDir:    "static",
		},
		Cache: CacheConfig{
			FileTTL:       Duration(5 * time.Minute),
			ListTTL:       Duration(5 * time.Minute),
			PageTTL:       Duration(time.Minute),
			BrowserMaxAge: Duration(5 * time.Minute),
		},
		Render: RenderConfig{
			Workers: 4,
		},
	}
}

// Load reads the YAML config at path, merges it over the defaults, applies
// env overrides, and validates the result. An empty path falls back to the
// BLOG_CONFIG env var, then "config.yaml". A missing file is not an error;
// the defaults stand.
func Load(path string) (*Config, error) {
	if path == "" {
		path = getEnv("BLOG_CONFIG", "config.yaml")
	}

	cfg := Default()

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// No config file; defaults apply.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if addr := os.Getenv("BLOG_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv("BLOG_CONTENT_DIR"); dir != "" {
		cfg.Content.Dir = dir
	}

	// The about page never shows up in the post listing.
	if !cfg.Content.Ignored(cfg.Content.AboutFile) {
		cfg.Content.Ignore = append(cfg.Content.Ignore, cfg.Content.AboutFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration tree.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server),
		validation.Field(&c.Content),
		validation.Field(&c.Cache),
		validation.Field(&c.Render),
	)
}

// Validate implements validation.Validatable.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.BaseURL, validation.Required, is.URL),
	)
}

// Validate implements validation.Validatable.
func (c ContentConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.AboutFile, validation.Required),
		validation.Field(&c.TemplatesDir, validation.Required),
		validation.Field(&c.StaticDir, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FileTTL, validation.By(positiveDuration)),
		validation.Field(&c.ListTTL, validation.By(positiveDuration)),
		validation.Field(&c.PageTTL, validation.By(positiveDuration)),
		validation.Field(&c.BrowserMaxAge, validation.By(positiveDuration)),
	)
}

// Validate implements validation.Validatable.
func (r RenderConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Workers, validation.Required, validation.Min(1)),
	)
}

func positiveDuration(value any) error {
	d, ok := value.(Duration)
	if !ok || d <= 0 {
		return errors.New("must be a positive duration")
	}
	return nil
}

// AboutName returns the about file's slug: its base name without extension.
func (c ContentConfig) AboutName() string {
	base := filepath.Base(c.AboutFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Ignored reports whether a file name sits on the listing ignore list.
func (c ContentConfig) Ignored(name string) bool {
	for _, ig := range c.Ignore {
		if name == ig {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
