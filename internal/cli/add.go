package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a todo",
		Long:  "Create a todo. Remaining arguments are joined with spaces to form the title.",
		Example: `  todos add Buy milk
  todos add "Write report" -d "quarterly numbers"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := types.NewTodo{Title: strings.Join(args, " ")}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			todo, err := a.client().Create(cmd.Context(), in)
			if err != nil {
				return a.clientErr(err)
			}
			return a.printer(cmd).todo(todo)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "optional description")
	return cmd
}
