package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"audiopref/internal/pairing"
)

func newPairsCommand(ctx *commandContext) *cobra.Command {
	var seed uint64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Preview the pairs the configured audio source produces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var opts []pairing.Option
			if cmd.Flags().Changed("seed") {
				opts = append(opts, pairing.WithCoin(pairing.SeededCoin(seed)))
			}
			gen, err := ctx.pairGenerator(cmd.Context(), ctx.cliLogger(cfg), opts...)
			if err != nil {
				return err
			}
			pairs, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, pairs)
			}
			out := cmd.OutOrStdout()
			if len(pairs) == 0 {
				fmt.Fprintln(out, "No audio pairs found")
				return nil
			}
			rows := make([][]string, 0, len(pairs))
			for i, p := range pairs {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.Label, p.SlotA, p.SlotB, yesNo(p.Swapped)})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Label", "Slot A", "Slot B", "Swapped"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed the swap coin for a reproducible order")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
