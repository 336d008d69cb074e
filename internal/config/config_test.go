package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	spawnerrors "github.com/vango-dev/spawn/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func errorCode(err error) string {
	var se *spawnerrors.SpawnError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Render.Output != DefaultOutput {
		t.Errorf("Render.Output = %q, want %q", cfg.Render.Output, DefaultOutput)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"spawn.yaml", "server:\n  port: 8080\n  live_reload: false\nrender:\n  pretty: true\npublish:\n  bucket: site\n  skip_unchanged: true\n"},
		{"spawn.json", `{"server": {"port": 8080, "live_reload": false}, "render": {"pretty": true}, "publish": {"bucket": "site", "skip_unchanged": true}}`},
		{"spawn.toml", "[server]\nport = 8080\nlive_reload = false\n[render]\npretty = true\n[publish]\nbucket = \"site\"\nskip_unchanged = true\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, tt.name, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Server.Port != 8080 {
				t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
			}
			if cfg.Server.LiveReload {
				t.Error("Server.LiveReload = true, want false")
			}
			if !cfg.Render.Pretty {
				t.Error("Render.Pretty = false, want true")
			}
			if cfg.Publish.Bucket != "site" || !cfg.Publish.SkipUnchanged {
				t.Errorf("Publish = %+v", cfg.Publish)
			}
			// Unset keys keep their defaults.
			if cfg.Server.Host != DefaultHost {
				t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
			}
			if cfg.Publish.Concurrency != 4 {
				t.Errorf("Publish.Concurrency = %d, want 4", cfg.Publish.Concurrency)
			}
			if cfg.Path() != path {
				t.Errorf("Path() = %q, want %q", cfg.Path(), path)
			}
			if cfg.Dir() != dir {
				t.Errorf("Dir() = %q, want %q", cfg.Dir(), dir)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spawn.yaml", "server:\n  port: 8080\n")

	t.Setenv("SPAWN_SERVER_PORT", "9090")
	t.Setenv("SPAWN_PUBLISH_BUCKET", "from-env")
	t.Setenv("SPAWN_LOG_FORMAT", "json")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Publish.Bucket != "from-env" {
		t.Errorf("Publish.Bucket = %q", cfg.Publish.Bucket)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	if code := errorCode(err); code != "S060" {
		t.Errorf("missing file: code = %q, want S060 (err %v)", code, err)
	}

	bad := writeFile(t, dir, "bad.yaml", "server: [unclosed\n")
	_, err = LoadFile(bad)
	if code := errorCode(err); code != "S060" {
		t.Errorf("bad file: code = %q, want S060 (err %v)", code, err)
	}

	good := writeFile(t, dir, "custom.yml", "render:\n  output: public\n")
	cfg, err := LoadFile(good)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if got, want := cfg.OutputPath(), filepath.Join(dir, "public"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		detail string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"concurrency", func(c *Config) { c.Publish.Concurrency = -1 }, "publish.concurrency"},
		{"lang", func(c *Config) { c.Render.Lang = "en us!" }, "render.lang"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if code := errorCode(err); code != "S060" {
				t.Fatalf("code = %q, want S060 (err %v)", code, err)
			}
			if !strings.Contains(err.Error(), tt.detail) {
				t.Errorf("error %q does not mention %q", err, tt.detail)
			}
		})
	}
}

func TestValidatePublish(t *testing.T) {
	cfg := New()
	if err := cfg.ValidatePublish(); errorCode(err) != "S060" {
		t.Errorf("missing bucket: err = %v", err)
	}
	cfg.Publish.Bucket = "b"
	if err := cfg.ValidatePublish(); err == nil {
		t.Error("missing region and endpoint should fail")
	}
	cfg.Publish.Endpoint = "http://localhost:9000"
	if err := cfg.ValidatePublish(); err != nil {
		t.Errorf("ValidatePublish() = %v", err)
	}
}

func TestServerAddress(t *testing.T) {
	cfg := New()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("ServerAddress() = %q", got)
	}
	if got := cfg.ServerURL(); got != "http://0.0.0.0:8080" {
		t.Errorf("ServerURL() = %q", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "code", "S001")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"code":"S001"`) {
		t.Errorf("json output missing attribute: %s", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "spawn.toml", "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error: %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}

	if !Exists(root) || Exists(nested) {
		t.Error("Exists() mismatch")
	}
}
