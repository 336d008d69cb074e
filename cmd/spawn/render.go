package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spawn/internal/config"
	"github.com/vango-dev/spawn/pkg/descriptor"
	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/render"
	"github.com/vango-dev/spawn/pkg/spawn"
)

// built is one descriptor file built into a fresh document.
type built struct {
	path        string
	page        *descriptor.Page
	doc         *dom.Document
	diagnostics []spawn.Diagnostic
}

// buildFile decodes path (through c when non-nil) and mounts it.
func buildFile(path string, c *descriptor.Cache, logger *slog.Logger) (*built, error) {
	page, err := c.Load(path)
	if err != nil {
		return nil, err
	}
	out := &built{path: path, page: page, doc: dom.New()}
	b := spawn.New(out.doc,
		spawn.WithLogger(logger),
		spawn.WithReporter(func(d spawn.Diagnostic) {
			out.diagnostics = append(out.diagnostics, d)
		}),
	)
	page.Build(b)
	return out, nil
}

// reportDiagnostics prints one warning line per builder diagnostic.
func (b *built) reportDiagnostics(w io.Writer) {
	for _, d := range b.diagnostics {
		warn(w, "%s: %s", b.path, d)
	}
}

// html renders the built document as a whole page, or only the body's
// content when fragment is set.
func (b *built) html(cfg *config.Config, fragment bool) ([]byte, error) {
	r := render.NewRenderer(render.RendererConfig{
		Pretty: cfg.Render.Pretty,
		Indent: cfg.Render.Indent,
	})

	var buf bytes.Buffer
	if fragment {
		if err := r.RenderChildren(&buf, b.doc.Body()); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	data := b.page.PageData(b.doc.Body())
	if data.Lang == "" {
		data.Lang = cfg.Render.Lang
	}
	if err := r.RenderPage(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// outputName maps a descriptor path to its rendered file name:
// pages/about.yaml becomes about.html.
func outputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".html"
}

func renderCmd(g *globals) *cobra.Command {
	var (
		output   string
		pretty   bool
		stdout   bool
		fragment bool
	)

	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render descriptor documents to HTML",
		Long: `Render each descriptor document to an HTML file in the output
directory. The format follows the file extension (.json, .yaml, .yml,
.toml, .msgpack, .mp) and is sniffed for anything else.

Examples:
  spawn render page.yaml
  spawn render pages/*.json --output=public
  spawn render page.toml --stdout --fragment`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Render.Output = output
			}
			if cmd.Flags().Changed("pretty") {
				cfg.Render.Pretty = pretty
			}
			if stdout && len(args) > 1 {
				return fmt.Errorf("--stdout takes a single file, got %d", len(args))
			}

			logger := g.logger(cfg)
			c := g.cache(cfg, logger)
			errw := cmd.ErrOrStderr()

			for _, path := range args {
				b, err := buildFile(path, c, logger)
				if err != nil {
					return err
				}
				b.reportDiagnostics(errw)

				out, err := b.html(cfg, fragment)
				if err != nil {
					return err
				}
				if stdout {
					_, err := cmd.OutOrStdout().Write(out)
					return err
				}

				dir := cfg.OutputPath()
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
				dest := filepath.Join(dir, outputName(path))
				if err := os.WriteFile(dest, out, 0o644); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "%s → %s", path, dest)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from config: dist)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the output")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write the HTML to stdout instead of a file")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "Render only the body content")

	return cmd
}
