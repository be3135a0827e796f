// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/pod-ledger/internal/config"
	"fjacquet/pod-ledger/internal/container"
	"fjacquet/pod-ledger/internal/logging"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
	Provider   uint
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cfg is the configuration loaded before any subcommand runs
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "pod-ledger",
		Short: "Import supplier exports into the expense ledger.",
		Long: `pod-ledger imports supplier exports (ad spend, print-on-demand
fulfillment, generic ledger CSVs) into an expense ledger. Each import is
previewed first, then confirmed; re-importing the same file is harmless.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := config.InitializeConfigFrom(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Common flags accessible to all commands
	SharedFlags = CommonFlags{}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input file (- for stdin)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.ConfigFile, "config", "c", "", "Config file (default: config.yaml in $HOME/.pod-ledger, .pod-ledger or .)")
}

// NewContainer wires the application from the loaded configuration.
func NewContainer() (*container.Container, error) {
	if Cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return container.NewContainer(Cfg)
}
