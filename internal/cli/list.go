package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, err := a.client().List(cmd.Context())
			if err != nil {
				return a.clientErr(err)
			}
			return a.printer(cmd).todos(todos)
		},
	}
}
