package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/config"
	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/internal/store"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Create the config directory with a default config.yaml, then create the\ndata directory and the todos schema. Safe to run more than once.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

type initResult struct {
	ConfigFile    string `json:"config_file"`
	ConfigCreated bool   `json:"config_created"`
	Driver        string `json:"driver"`
	DataDir       string `json:"data_dir,omitempty"`
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	written, err := config.WriteDefault(a.configDir, a.settings.Storage.DataDir)
	if err != nil {
		return sysErr(fmt.Errorf("write config: %w", err))
	}

	st, err := store.Open(cmd.Context(), a.settings.Storage)
	if err != nil {
		return sysErr(fmt.Errorf("initialize storage: %w", err))
	}
	if err := st.Close(); err != nil {
		return sysErr(fmt.Errorf("finalize storage: %w", err))
	}

	res := initResult{
		ConfigFile:    paths.ConfigFile(a.configDir),
		ConfigCreated: written,
		Driver:        a.settings.Storage.Driver,
	}
	if a.settings.Storage.DSN == "" {
		res.DataDir = a.settings.Storage.DataDir
	}

	p := a.printer(cmd)
	if p.json {
		return p.writeJSON(res)
	}
	state := "exists"
	if written {
		state = "created"
	}
	fmt.Fprintf(p.w, "Config: %s (%s)\n", res.ConfigFile, state)
	if res.DataDir != "" {
		fmt.Fprintf(p.w, "Data:   %s\n", res.DataDir)
	}
	fmt.Fprintln(p.w, "todos initialized")
	return nil
}
