/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/dctsteg/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file with the default codec parameters.

Examples:
  dctsteg init
  dctsteg init --generate-api-key --config ./dctsteg.yaml`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			generateAPIKey, _ := cmd.Flags().GetBool("generate-api-key")
			force, _ := cmd.Flags().GetBool("force")

			path := configPath(cmd)
			if config.ConfigExists(path) && !force {
				return fmt.Errorf("config already exists at %s, use --force to overwrite", path)
			}

			cfg, err := config.BootstrapConfig(path, generateAPIKey)
			if err != nil {
				return err
			}

			cmd.Printf("✅ Configuration written to %s\n", path)
			if cfg.Server.APIKey != "" {
				cmd.Printf("API key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}

	initCmd.Flags().Bool("generate-api-key", false, "Generate an API key for the HTTP server")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	return initCmd
}
