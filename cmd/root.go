package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartfarm/smartfarm-go/cmd/configcmd"
	"github.com/smartfarm/smartfarm-go/cmd/serve"
	"github.com/smartfarm/smartfarm-go/internal/conf"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// RootCommand creates and returns the root command. Running it without a
// subcommand starts the server.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           conf.AppName,
		Short:         "SmartFarm device backend",
		Long:          "HTTP backend for a farm-monitoring device: detection alerts, deterrent sounds and device settings.",
		Version:       settings.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		logger.Global().Module("cmd").Warn("Failed to bind flags", logger.Error(err))
	}

	serveCmd := serve.Command(settings)
	configCmd := configcmd.Command(settings)
	rootCmd.AddCommand(serveCmd, configCmd)

	rootCmd.RunE = serveCmd.RunE

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags write straight into settings, so re-validate what they changed
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	flags.StringVarP(&settings.WebServer.Port, "port", "p", viper.GetString("webserver.port"), "Port to listen on")
	flags.StringVar(&settings.Uploads.Path, "uploads", viper.GetString("uploads.path"), "Directory for uploaded sounds")
	flags.BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Expose Prometheus metrics on /metrics")

	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
