package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/spawn/pkg/descriptor"
)

func cacheCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the decoded descriptor cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "dir",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := openConfiguredCache(g)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), c.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove every cached page",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := openConfiguredCache(g)
				if err != nil {
					return err
				}
				if err := c.DropAll(); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Cleared %s", c.Dir())
				return nil
			},
		},
	)
	return cmd
}

// openConfiguredCache opens the cache directory from the config whether
// or not caching is enabled.
func openConfiguredCache(g *globals) (*descriptor.Cache, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return descriptor.OpenCache(cfg.Cache.Dir)
}
