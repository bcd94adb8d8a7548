/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/dctsteg/pkg/config"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the steganography REST API server. On first run a configuration
file with a generated API key is created.

Examples:
  dctsteg serve
  dctsteg serve --port 9000 --bind 0.0.0.0
  dctsteg serve --config ./dctsteg.yaml --print-key`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipConfigLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			printKey, _ := cmd.Flags().GetBool("print-key")

			path := configPath(cmd)
			if !config.ConfigExists(path) {
				cmd.Printf("🔧 First run detected. Bootstrapping dctsteg...\n")
				if _, err := config.BootstrapConfig(path, true); err != nil {
					return fmt.Errorf("failed to bootstrap config: %w", err)
				}
				cmd.Printf("✅ Configuration created at %s\n", path)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Override config with command line flags if provided
			if cmd.Flags().Changed("port") {
				cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
			}

			if printKey && cfg.Server.APIKey != "" {
				cmd.Printf("🔑 API key: %s\n", cfg.Server.APIKey)
			}

			if container == nil {
				return fmt.Errorf("dependency container not initialized")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("🚀 Starting dctsteg server on %s\n", cfg.Addr())
			starter := container.GetServerFactory().CreateServerStarter()
			if err := starter.StartServer(ctx, cfg); err != nil {
				return fmt.Errorf("error starting server: %w", err)
			}
			return nil
		},
	}

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().Bool("print-key", false, "Print the API key to the console")

	return serveCmd
}
