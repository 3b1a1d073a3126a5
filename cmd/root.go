package cmd

import (
	"errors"
	"os"

	"conductorsync/internal/conductor"
	"conductorsync/internal/config"
	"conductorsync/internal/reconciler"
	"conductorsync/pkg/logging"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeFormat indicates a conductor config or tool config that could not be parsed.
	ExitCodeFormat = 2
	// ExitCodeIO indicates a filesystem failure while relocating DNAs.
	ExitCodeIO = 3
)

// rootOptions holds the persistent flags shared by all subcommands.
type rootOptions struct {
	debug      bool
	configPath string
}

// rootCmd represents the base command for the conductorsync application.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "conductorsync",
		Short: "Reconcile a generated Holochain conductor config with the persisted one",
		Long: `conductorsync merges a freshly generated conductor configuration with the
configuration persisted by the previous run, so that runtime state such as
holo-hosted hApp instances survives a redeploy.

A run relocates DNA files into the conductor's persistence directory, carries
holo-hosted instances forward from the previous configuration, re-attaches
them to the hosted interface and writes the reconciled configuration.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelInfo
			if opts.debug {
				level = logging.LevelDebug
			}
			logging.InitForCLI(level, cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config-path", "", "Configuration directory (default $HOME/.config/conductorsync)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newReconcileCmd(opts))
	cmd.AddCommand(newInspectCmd())

	return cmd
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "conductorsync version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var formatErr *conductor.FormatError
	if errors.As(err, &formatErr) {
		return ExitCodeFormat
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeFormat
	}

	var ioErr *reconciler.IoError
	if errors.As(err, &ioErr) {
		return ExitCodeIO
	}

	return ExitCodeError
}
