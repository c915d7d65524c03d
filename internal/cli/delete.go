package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := a.client().Delete(cmd.Context(), id); err != nil {
				return a.clientErr(err)
			}
			return a.printer(cmd).result(map[string]string{"deleted": id}, "Deleted %s", id)
		},
	}
}
