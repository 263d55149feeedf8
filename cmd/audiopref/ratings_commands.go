package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"audiopref/internal/config"
	"audiopref/internal/ratings"
)

func newRatingsCommand(ctx *commandContext) *cobra.Command {
	ratingsCmd := &cobra.Command{
		Use:   "ratings",
		Short: "Inspect and export stored ratings",
	}
	ratingsCmd.AddCommand(newRatingsListCommand(ctx))
	ratingsCmd.AddCommand(newRatingsExportCommand(ctx))
	ratingsCmd.AddCommand(newRatingsProgressCommand(ctx))
	return ratingsCmd
}

func newRatingsListCommand(ctx *commandContext) *cobra.Command {
	var userFilter string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ratings in submission order",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ratingsService()
			if err != nil {
				return err
			}
			records, err := svc.AllRatings(cmd.Context())
			if err != nil {
				return err
			}
			userFilter = strings.TrimSpace(userFilter)
			filtered := make([]ratings.Record, 0, len(records))
			for _, record := range records {
				if userFilter != "" && record.UserID != userFilter {
					continue
				}
				filtered = append(filtered, record)
			}

			if asJSON {
				return writeJSON(cmd, filtered)
			}
			out := cmd.OutOrStdout()
			if len(filtered) == 0 {
				fmt.Fprintln(out, "No ratings found")
				return nil
			}
			rows := make([][]string, 0, len(filtered))
			for i, record := range filtered {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					record.UserID,
					record.AudioA,
					record.AudioB,
					strconv.Itoa(record.Rating.RatingA),
					strconv.Itoa(record.Rating.RatingB),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "User", "Improved (A)", "Raw (B)", "A", "B"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&userFilter, "user", "", "Only show ratings from this user id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRatingsExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var quoted bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export ratings as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ratingsService()
			if err != nil {
				return err
			}
			csv, ok, err := svc.ExportCSVWith(cmd.Context(), ratings.ExportOptions{Quoted: quoted})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No data to export")
				return nil
			}

			if outputPath = strings.TrimSpace(outputPath); outputPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), csv)
				return nil
			}
			target, err := config.ExpandPath(outputPath)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if err := os.WriteFile(target, []byte(csv+"\n"), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d ratings to %s\n", strings.Count(csv, "\n"), target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to file instead of stdout (e.g. "+ratings.ExportFilename+")")
	cmd.Flags().BoolVar(&quoted, "quoted", false, "Quote fields containing commas, quotes or newlines")
	return cmd
}

func newRatingsProgressCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "progress <user-id>",
		Short: "Show how many of the current pairs a rater has scored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := ctx.ratingsService()
			if err != nil {
				return err
			}
			gen, err := ctx.pairGenerator(cmd.Context(), ctx.cliLogger(cfg))
			if err != nil {
				return err
			}
			pairs, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]ratings.PairKey, 0, len(pairs))
			for _, p := range pairs {
				keys = append(keys, ratings.PairKey{AudioA: p.Improved(), AudioB: p.Raw()})
			}
			progress, err := svc.Progress(cmd.Context(), strings.TrimSpace(args[0]), keys)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, progress)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d/%d rated (complete: %s)\n", progress.UserID, progress.Rated, progress.Total, yesNo(progress.Complete()))
			for _, key := range progress.Remaining {
				fmt.Fprintf(out, "  remaining: %s\n", key.AudioA)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
