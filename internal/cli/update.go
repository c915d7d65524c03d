package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/pkg/types"
)

var errNothingToUpdate = errors.New("nothing to update: set --title, --description, --clear-description or --completed")

func newUpdateCmd(a *app) *cobra.Command {
	var (
		title       string
		description string
		clearDesc   bool
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a todo",
		Long:  "Update sends only the fields whose flags are given. Other fields keep their values.",
		Example: `  todos update 3f1c... --completed
  todos update 3f1c... --completed=false --title "Buy oat milk"
  todos update 3f1c... --clear-description`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch types.TodoPatch
			if flags.Changed("title") {
				patch.Title = types.Some(title)
			}
			if flags.Changed("description") {
				patch.Description = types.Some(description)
			}
			if clearDesc {
				patch.Description = types.Null[string]()
			}
			if flags.Changed("completed") {
				patch.Completed = types.Some(completed)
			}
			if patch.IsEmpty() {
				return userErr(errNothingToUpdate)
			}

			todo, err := a.client().Update(cmd.Context(), args[0], patch)
			if err != nil {
				return a.clientErr(err)
			}
			return a.printer(cmd).todo(todo)
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&description, "description", "d", "", "new description")
	f.BoolVar(&clearDesc, "clear-description", false, "remove the description")
	f.BoolVar(&completed, "completed", false, "mark completed (use --completed=false to reopen)")
	cmd.MarkFlagsMutuallyExclusive("description", "clear-description")
	return cmd
}
