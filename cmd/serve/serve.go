// Package serve implements the command that runs the HTTP server.
package serve

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartfarm/smartfarm-go/internal/api"
	"github.com/smartfarm/smartfarm-go/internal/conf"
	"github.com/smartfarm/smartfarm-go/internal/logger"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Start the SmartFarm HTTP API and serve until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd, settings)
		},
	}

	cmd.Flags().StringSliceVar(&settings.WebServer.AllowedOrigins, "cors", settings.WebServer.AllowedOrigins, "CORS allowed origins")
	cmd.Flags().Float64Var(&settings.WebServer.RateLimit, "ratelimit", settings.WebServer.RateLimit, "Requests per second per client IP, 0 disables")

	return cmd
}

// Run configures logging and serves until the command context is cancelled
// or the process receives SIGINT/SIGTERM.
func Run(cmd *cobra.Command, settings *conf.Settings) error {
	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)
	defer func() {
		if err := central.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed to close logger: %v\n", err)
		}
	}()

	log := central.Module("main")
	log.Info("Starting SmartFarm",
		logger.String("name", settings.Main.Name),
		logger.String("version", settings.Version),
		logger.String("build_date", settings.BuildDate),
		logger.String("port", settings.WebServer.Port),
		logger.String("uploads", settings.Uploads.Path))

	server, err := api.New(settings)
	if err != nil {
		log.Error("Failed to create server", logger.Error(err))
		return err
	}

	return server.StartWithGracefulShutdown(cmd.Context())
}
