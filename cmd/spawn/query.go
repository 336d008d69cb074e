package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spawn/pkg/dom"
	"github.com/vango-dev/spawn/pkg/render"
	"github.com/vango-dev/spawn/pkg/selector"
)

func queryCmd(g *globals) *cobra.Command {
	var (
		within  string
		asJSON  bool
		explain bool
	)

	cmd := &cobra.Command{
		Use:   "query FILE QUERY",
		Short: "Run a prefix query against a built document",
		Long: `Build FILE and print the elements QUERY matches.

The first one or two characters of QUERY pick the lookup:

  "# main"     element with id main
  ".. card"    elements with class card
  "? email"    elements named email
  "~ p"        <p> elements
  "@ href"     elements with an href attribute
  "== 42"      form controls whose value is 42
  "^ nav > a"  first match of a CSS selector
  "li.active"  every match of a CSS selector

Examples:
  spawn query page.yaml ".. note"
  spawn query page.yaml "~ a" --within=nav --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger := g.logger(cfg)

			b, err := buildFile(args[0], g.cache(cfg, logger), logger)
			if err != nil {
				return err
			}
			b.reportDiagnostics(cmd.ErrOrStderr())

			q := selector.Resolve(args[1])
			nodes, err := selector.Run(b.doc, q, selector.Scope(b.doc, within))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				matches := make([]string, 0, len(nodes))
				for _, n := range nodes {
					matches = append(matches, dom.OuterHTML(n))
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"query":    args[1],
					"strategy": q.Strategy.String(),
					"residual": q.Residual,
					"count":    len(nodes),
					"matches":  matches,
				})
			}

			if explain {
				info(w, "%s matched %d", q, len(nodes))
			}
			for _, n := range nodes {
				fmt.Fprintf(w, "%s\t%s\n", render.Label(n), dom.OuterHTML(n))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&within, "within", "", "CSS selector of the element to search under")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the resolved strategy")

	return cmd
}

func outlineCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "outline FILE",
		Short: "Print the element tree of a built document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			logger := g.logger(cfg)

			b, err := buildFile(args[0], g.cache(cfg, logger), logger)
			if err != nil {
				return err
			}
			b.reportDiagnostics(cmd.ErrOrStderr())

			fmt.Fprint(cmd.OutOrStdout(), render.Outline(b.doc.Body()))
			return nil
		},
	}
}
