package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	spawnerrors "github.com/vango-dev/spawn/internal/errors"
)

const (
	// ConfigName is the base name of the configuration file. Any extension
	// viper understands is accepted: spawn.yaml, spawn.json, spawn.toml.
	ConfigName = "spawn"

	// EnvPrefix prefixes environment overrides, e.g. SPAWN_SERVER_PORT.
	EnvPrefix = "SPAWN"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultOutput is the default render output directory.
	DefaultOutput = "dist"
)

// Config represents the complete spawn configuration.
type Config struct {
	// Render contains page rendering settings.
	Render RenderConfig `mapstructure:"render"`

	// Server contains preview server settings.
	Server ServerConfig `mapstructure:"server"`

	// Publish contains S3 publishing settings.
	Publish PublishConfig `mapstructure:"publish"`

	// Log contains logging settings.
	Log LogConfig `mapstructure:"log"`

	// Cache contains descriptor cache settings.
	Cache CacheConfig `mapstructure:"cache"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains page rendering settings.
type RenderConfig struct {
	// Pretty enables indented output.
	Pretty bool `mapstructure:"pretty"`

	// Indent is the indentation unit for pretty output.
	Indent string `mapstructure:"indent"`

	// Output is the directory rendered pages are written to.
	Output string `mapstructure:"output"`

	// Lang is the default document language.
	Lang string `mapstructure:"lang"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `mapstructure:"host"`

	// Port is the port to listen on.
	Port int `mapstructure:"port"`

	// LiveReload reloads connected browsers when watched files change.
	LiveReload bool `mapstructure:"live_reload"`

	// Watch lists extra paths to watch besides the served document.
	Watch []string `mapstructure:"watch"`

	// Metrics exposes GET /metrics.
	Metrics bool `mapstructure:"metrics"`

	// Tracing wraps requests in OpenTelemetry spans.
	Tracing bool `mapstructure:"tracing"`
}

// PublishConfig contains S3 publishing settings.
type PublishConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`

	// PathStyle addresses buckets as endpoint/bucket.
	PathStyle bool `mapstructure:"path_style"`

	// Concurrency limits parallel uploads.
	Concurrency int `mapstructure:"concurrency"`

	// SkipUnchanged skips objects whose stored digest matches.
	SkipUnchanged bool `mapstructure:"skip_unchanged"`

	CacheControl string `mapstructure:"cache_control"`

	// Static credentials. Usually set through SPAWN_PUBLISH_ACCESS_KEY_ID
	// and SPAWN_PUBLISH_SECRET_ACCESS_KEY.
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// CacheConfig contains descriptor cache settings.
type CacheConfig struct {
	// Enabled turns on the decoded descriptor cache.
	Enabled bool `mapstructure:"enabled"`

	// Dir overrides the cache directory.
	Dir string `mapstructure:"dir"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Render: RenderConfig{
			Indent: "  ",
			Output: DefaultOutput,
			Lang:   "en",
		},
		Server: ServerConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			LiveReload: true,
			Metrics:    true,
		},
		Publish: PublishConfig{
			Concurrency: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// newViper returns a viper instance with defaults and environment
// overrides for every key.
func newViper() *viper.Viper {
	v := viper.New()
	d := New()

	v.SetDefault("render.pretty", d.Render.Pretty)
	v.SetDefault("render.indent", d.Render.Indent)
	v.SetDefault("render.output", d.Render.Output)
	v.SetDefault("render.lang", d.Render.Lang)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.live_reload", d.Server.LiveReload)
	v.SetDefault("server.watch", d.Server.Watch)
	v.SetDefault("server.metrics", d.Server.Metrics)
	v.SetDefault("server.tracing", d.Server.Tracing)
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "")
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.path_style", false)
	v.SetDefault("publish.concurrency", d.Publish.Concurrency)
	v.SetDefault("publish.skip_unchanged", false)
	v.SetDefault("publish.cache_control", "")
	v.SetDefault("publish.access_key_id", "")
	v.SetDefault("publish.secret_access_key", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from dir. A directory without a spawn config
// file yields the defaults with environment overrides applied.
func Load(dir string) (*Config, error) {
	v := newViper()
	v.SetConfigName(ConfigName)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, spawnerrors.New("S060").
				WithDetail("Failed to parse " + v.ConfigFileUsed()).
				Wrap(err)
		}
	}
	return decode(v)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, spawnerrors.New("S060").
			WithDetail("No config file at " + path).
			Wrap(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, spawnerrors.New("S060").
			WithDetail("Failed to parse " + path).
			WithSuggestion("Check that the file is valid " + strings.TrimPrefix(filepath.Ext(path), ".")).
			Wrap(err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, spawnerrors.New("S060").Wrap(err)
	}
	cfg.configPath = v.ConfigFileUsed()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in values a config file set to empty.
func (c *Config) applyDefaults() {
	if c.Render.Indent == "" {
		c.Render.Indent = "  "
	}
	if c.Render.Output == "" {
		c.Render.Output = DefaultOutput
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Publish.Concurrency == 0 {
		c.Publish.Concurrency = 4
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return spawnerrors.New("S060").
			WithDetail("server.port must be between 0 and 65535")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return spawnerrors.New("S060").
			WithDetail(err.Error()).
			WithSuggestion("Use one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return spawnerrors.New("S060").
			WithDetailf("log.format %q is not text or json", c.Log.Format)
	}
	if c.Render.Lang != "" {
		if _, err := language.Parse(c.Render.Lang); err != nil {
			return spawnerrors.New("S060").
				WithDetailf("render.lang %q is not a language tag", c.Render.Lang)
		}
	}
	if c.Publish.Concurrency < 1 {
		return spawnerrors.New("S060").
			WithDetail("publish.concurrency must be at least 1")
	}
	return nil
}

// ValidatePublish checks the settings publishing needs.
func (c *Config) ValidatePublish() error {
	if c.Publish.Bucket == "" {
		return spawnerrors.New("S060").
			WithDetail("publish.bucket is not set").
			WithSuggestion("Set publish.bucket in spawn.yaml or SPAWN_PUBLISH_BUCKET")
	}
	if c.Publish.Region == "" && c.Publish.Endpoint == "" {
		return spawnerrors.New("S060").
			WithDetail("publish needs a region or an endpoint")
	}
	return nil
}

// ServerAddress returns the address string for the preview server.
func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ServerURL returns the full URL for the preview server.
func (c *Config) ServerURL() string {
	return "http://" + c.ServerAddress()
}

// OutputPath returns the render output directory, relative paths being
// resolved against the config file's directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Render.Output) {
		return c.Render.Output
	}
	return filepath.Join(c.Dir(), c.Render.Output)
}

// NewLogger returns a slog logger writing to w as configured.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}

var configExts = []string{"yaml", "yml", "json", "toml"}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, ext := range configExts {
		if _, err := os.Stat(filepath.Join(dir, ConfigName+"."+ext)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a spawn config, or an error if none.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", spawnerrors.New("S060").
				WithDetail("No spawn config found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
