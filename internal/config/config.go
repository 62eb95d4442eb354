package config

import (
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joestar-dev/joestar/internal/errors"
)

const (
	// FileName is the name of the configuration file.
	FileName = "joestar.yaml"

	DriverWebview = "webview"
	DriverBrowser = "browser"

	DefaultTitle   = "joestar"
	DefaultWidth   = 800
	DefaultHeight  = 600
	DefaultAddress = "127.0.0.1:8700"
	DefaultQueue   = 256
)

// Config is the joestar.yaml schema.
type Config struct {
	// Driver selects the rendering surface: "webview" or "browser".
	Driver string `yaml:"driver,omitempty"`

	Window   WindowConfig   `yaml:"window"`
	Browser  BrowserConfig  `yaml:"browser"`
	Log      LogConfig      `yaml:"log"`
	Events   EventsConfig   `yaml:"events"`
	Snapshot SnapshotConfig `yaml:"snapshot"`

	// Debug enables developer tools in the native window.
	Debug bool `yaml:"debug,omitempty"`

	path string
}

// WindowConfig sets the initial view.
type WindowConfig struct {
	Title  string `yaml:"title,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// BrowserConfig configures the browser driver.
type BrowserConfig struct {
	Address string `yaml:"address,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`

	// Format is "text" or "json".
	Format string `yaml:"format,omitempty"`
}

// EventsConfig bounds host queue buffering.
type EventsConfig struct {
	// Queue limits pending posted tasks. Inbound events are never dropped.
	Queue int `yaml:"queue,omitempty"`
}

// SnapshotConfig is the default destination for 'joestar render'.
type SnapshotConfig struct {
	Dir string   `yaml:"dir,omitempty"`
	S3  S3Config `yaml:"s3"`
}

// S3Config addresses an S3 compatible bucket.
type S3Config struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`
}

// New returns a configuration with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads joestar.yaml from dir, returning defaults when it is absent.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if err != nil {
		var e *errors.Error
		if stderrors.As(err, &e) && stderrors.Is(e.Wrapped, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("J100").
			WithDetail("Could not read " + path).
			Wrap(err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("J101").
			WithDetail("Failed to parse " + path + ": " + err.Error())
	}

	cfg.path = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Marshal encodes the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverWebview
	}
	if c.Window.Title == "" {
		c.Window.Title = DefaultTitle
	}
	if c.Window.Width == 0 {
		c.Window.Width = DefaultWidth
	}
	if c.Window.Height == 0 {
		c.Window.Height = DefaultHeight
	}
	if c.Browser.Address == "" {
		c.Browser.Address = DefaultAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Events.Queue == 0 {
		c.Events.Queue = DefaultQueue
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverWebview, DriverBrowser:
	default:
		return errors.New("J120").
			WithDetail("driver " + quote(c.Driver) + " is not supported")
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return errors.New("J102").
			WithDetail("window width and height must not be negative")
	}
	if c.Events.Queue < 1 {
		return errors.New("J102").
			WithDetail("events.queue must be at least 1")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("J102").
			WithDetail("log.format must be text or json, got " + quote(c.Log.Format))
	}
	if c.Snapshot.S3.Prefix != "" && c.Snapshot.S3.Bucket == "" {
		return errors.New("J102").
			WithDetail("snapshot.s3.prefix is set without snapshot.s3.bucket")
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, errors.New("J102").
			WithDetail("log.level must be debug, info, warn or error, got " + quote(name))
	}
	return level, nil
}

func quote(s string) string {
	return `"` + s + `"`
}
