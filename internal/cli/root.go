// Package cli implements the todos command-line interface: the server, local
// maintenance commands, and HTTP client commands.
package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/client"
	"github.com/mesh-intelligence/todos/internal/config"
	"github.com/mesh-intelligence/todos/internal/paths"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// flagKeys binds command-line flags, wherever they are defined, to config
// keys. Flags win over environment and config file.
var flagKeys = map[string]string{
	"server":     config.KeyClientServer,
	"addr":       config.KeyServerAddr,
	"static-dir": config.KeyServerStaticDir,
	"driver":     config.KeyStorageDriver,
	"dsn":        config.KeyStorageDSN,
}

// app is the state shared by the subcommands of one root command.
type app struct {
	flags rootFlags

	configDir string
	settings  config.Settings
	logger    *slog.Logger
}

// NewRootCmd creates the top-level "todos" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "todos",
		Short: "A small todo list server and client",
		Long: "todos serves a REST API for todo items backed by SQLite or Postgres,\n" +
			"and talks to a running server from the command line.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/todos)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.todos-db)")
	pf.String("server", "", "server URL for client commands (default: http://127.0.0.1:3030)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output as JSON")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userErr(err)
	})

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newExportCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	return exitCode(err)
}

// setup resolves directories, loads configuration, and builds the logger
// before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}

	v, err := config.Load(configDir)
	if err != nil {
		return userErr(err)
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return sysErr(fmt.Errorf("bind flag %s: %w", name, err))
			}
		}
	}

	settings, err := config.FromViper(v)
	if err != nil {
		return userErr(fmt.Errorf("invalid configuration: %w", err))
	}
	settings.Storage.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, settings.Storage.DataDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve data dir: %w", err))
	}

	logger, err := newLogger(cmd.ErrOrStderr(), settings.Log)
	if err != nil {
		return userErr(err)
	}

	a.configDir = configDir
	a.settings = settings
	a.logger = logger
	return nil
}

// client returns an API client for the configured server.
func (a *app) client() *client.Client {
	return client.New(a.settings.Client.Server, &http.Client{Timeout: a.settings.Client.Timeout})
}
