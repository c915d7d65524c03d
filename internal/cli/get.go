package cli

import (
	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			todo, err := a.client().Get(cmd.Context(), args[0])
			if err != nil {
				return a.clientErr(err)
			}
			return a.printer(cmd).todo(todo)
		},
	}
}
