package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List raters who have logged in",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := ctx.ratingsService()
			if err != nil {
				return err
			}
			users, err := svc.Users(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, users)
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found")
				return nil
			}
			ids := make([]string, 0, len(users))
			for id := range users {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			rows := make([][]string, 0, len(ids))
			for _, id := range ids {
				rows = append(rows, []string{id, users[id].Name, users[id].Email})
			}
			fmt.Fprintln(out, renderTable([]string{"User ID", "Name", "Email"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
