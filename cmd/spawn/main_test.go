package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPage = `title: Demo
body:
  - main
  - - [p.note, hi]
    - [p.note, there]
`

// project writes a config and a page into a temp dir and returns both
// paths.
func project(t *testing.T, configYAML string) (cfgPath, pagePath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "spawn.yaml")
	pagePath = filepath.Join(dir, "page.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"+configYAML), 0o644))
	require.NoError(t, os.WriteFile(pagePath, []byte(testPage), 0o644))
	return cfgPath, pagePath
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRenderStdout(t *testing.T) {
	cfg, page := project(t, "")

	out, _, err := run(t, "--config", cfg, "render", page, "--stdout", "--fragment")
	require.NoError(t, err)
	assert.Equal(t, `<main><p class="note">hi</p><p class="note">there</p></main>`, strings.TrimSpace(out))
}

func TestRenderWritesOutputDir(t *testing.T) {
	cfg, page := project(t, "render:\n  output: public\n")

	out, _, err := run(t, "--config", cfg, "render", page)
	require.NoError(t, err)

	dest := filepath.Join(filepath.Dir(cfg), "public", "page.html")
	assert.Contains(t, out, dest)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Demo</title>")
	assert.Contains(t, string(data), `<html lang="en">`)
}

func TestRenderOutputFlag(t *testing.T) {
	cfg, page := project(t, "")
	dir := t.TempDir()

	_, _, err := run(t, "--config", cfg, "render", page, "-o", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "page.html"))
}

func TestRenderReportsDiagnostics(t *testing.T) {
	cfg, _ := project(t, "")
	page := filepath.Join(filepath.Dir(cfg), "warn.json")
	require.NoError(t, os.WriteFile(page, []byte(`["p", {"bogus": 1}, "x"]`), 0o644))

	out, stderr, err := run(t, "--config", cfg, "render", page, "--stdout", "--fragment")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", strings.TrimSpace(out))
	assert.Contains(t, stderr, "S001")
}

func TestRenderStdoutSingleFile(t *testing.T) {
	cfg, page := project(t, "")

	_, _, err := run(t, "--config", cfg, "render", page, page, "--stdout")
	assert.Error(t, err)
}

func TestRenderDecodeError(t *testing.T) {
	cfg, _ := project(t, "")
	page := filepath.Join(filepath.Dir(cfg), "bad.json")
	require.NoError(t, os.WriteFile(page, []byte(`["p", `), 0o644))

	_, _, err := run(t, "--config", cfg, "render", page)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S050")
}

func TestQuery(t *testing.T) {
	cfg, page := project(t, "")

	out, _, err := run(t, "--config", cfg, "query", page, ".. note")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "p.note\t<p class=\"note\">hi</p>", lines[0])
}

func TestQueryJSON(t *testing.T) {
	cfg, page := project(t, "")

	out, _, err := run(t, "--config", cfg, "query", page, "~ main", "--json")
	require.NoError(t, err)

	var res struct {
		Strategy string   `json:"strategy"`
		Residual string   `json:"residual"`
		Count    int      `json:"count"`
		Matches  []string `json:"matches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "tag", res.Strategy)
	assert.Equal(t, "main", res.Residual)
	assert.Equal(t, 1, res.Count)
}

func TestQueryWithin(t *testing.T) {
	cfg, page := project(t, "")

	out, _, err := run(t, "--config", cfg, "query", page, "~ p", "--within", "section")
	require.NoError(t, err)
	// An unmatched scope searches the whole document.
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestOutline(t *testing.T) {
	cfg, page := project(t, "")

	out, _, err := run(t, "--config", cfg, "outline", page)
	require.NoError(t, err)
	assert.Contains(t, out, "body")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "p.note")
	assert.Contains(t, out, `"hi"`)
}

func TestPublishDryRun(t *testing.T) {
	cfg, page := project(t, "publish:\n  bucket: site\n  region: eu-west-1\n  prefix: preview/\n")

	out, _, err := run(t, "--config", cfg, "publish", page, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "s3://site/preview/page.html")
}

func TestPublishFlagsOverrideConfig(t *testing.T) {
	cfg, page := project(t, "publish:\n  bucket: site\n  region: eu-west-1\n  prefix: preview/\n")

	out, _, err := run(t, "--config", cfg, "publish", page, "--dry-run", "--bucket", "other", "--prefix", "")
	require.NoError(t, err)
	assert.Contains(t, out, "s3://other/page.html")
}

func TestPublishNeedsBucket(t *testing.T) {
	cfg, page := project(t, "")

	_, _, err := run(t, "--config", cfg, "publish", page, "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S060")
}

func TestCacheCommands(t *testing.T) {
	cacheDir := t.TempDir()
	cfg, page := project(t, "cache:\n  enabled: true\n  dir: "+cacheDir+"\n")

	_, _, err := run(t, "--config", cfg, "render", page, "--stdout")
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(cacheDir, "pages"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, _, err := run(t, "--config", cfg, "cache", "dir")
	require.NoError(t, err)
	assert.Equal(t, cacheDir, strings.TrimSpace(out))

	_, _, err = run(t, "--config", cfg, "cache", "clean")
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(cacheDir, "pages"))
}

func TestMissingConfigFile(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	// version does not read the config.
	assert.NoError(t, err)

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "outline", "page.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "S060")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)

	out, _, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    dev")
}

func TestOutputName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"page.yaml", "page.html"},
		{"pages/about.json", "about.html"},
		{"site.v2.toml", "site.v2.html"},
		{"noext", "noext.html"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputName(tt.path), tt.path)
	}
}
