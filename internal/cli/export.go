package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every todo to a JSON Lines file",
		Long: "Export reads the configured store directly, without a running server,\n" +
			"and writes one todo per line. The file is replaced atomically.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := out
			if path == "" {
				path = paths.ExportFile(a.settings.Storage.DataDir, time.Now())
			}

			st, err := store.Open(cmd.Context(), a.settings.Storage)
			if err != nil {
				return sysErr(fmt.Errorf("open storage: %w", err))
			}
			defer st.Close()

			n, err := st.ExportJSONL(cmd.Context(), path)
			if err != nil {
				return sysErr(fmt.Errorf("export: %w", err))
			}
			return a.printer(cmd).result(
				map[string]any{"path": path, "count": n},
				"Exported %d todos to %s", n, path,
			)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <data-dir>/exports/todos-<timestamp>.jsonl)")
	return cmd
}
