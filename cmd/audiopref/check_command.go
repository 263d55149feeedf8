package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"audiopref/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run readiness checks against the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var gen preflight.PairGenerator
			if g, genErr := ctx.pairGenerator(cmd.Context(), ctx.cliLogger(cfg)); genErr == nil {
				gen = g
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), genErr)
			}
			results := preflight.RunAll(cmd.Context(), cfg, gen)

			if asJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("audiopref readiness", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configDescription(), colorize))
				for _, result := range results {
					kind := statusOK
					if !result.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
				}
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func (c *commandContext) configDescription() string {
	if c.configSeen {
		return c.configPath
	}
	return c.configPath + " (not found, defaults used)"
}
