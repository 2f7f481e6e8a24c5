// Package configcmd implements the command that prints the effective configuration.
package configcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartfarm/smartfarm-go/internal/conf"
)

// Command creates the config command.
func Command(settings *conf.Settings) *cobra.Command {
	var savePath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, config file, .env file, environment variables and flags are applied.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if savePath != "" {
				if err := conf.SaveYAMLConfig(savePath, settings); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", savePath)
				return nil
			}

			data, err := conf.Dump(settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&savePath, "save", "", "Write the configuration to this file instead of printing it")

	return cmd
}
