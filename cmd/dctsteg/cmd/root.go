/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/dctsteg/pkg/config"
	"github.com/ssargent/dctsteg/pkg/di"
	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
)

type contextKey string

const configKey contextKey = "config"

var container *di.Container

// SetContainer injects the dependency container used by serve.
func SetContainer(c *di.Container) {
	container = c
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dctsteg",
		Short: "dctsteg - DCT steganography for lossless images",
		Long: `dctsteg hides short text messages in one color channel of an image by
forcing the sign of mid-frequency DCT coefficients in every 8x8 block.

The encoded image must be stored losslessly (PNG, BMP or TIFF).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Store in command context
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("channel", "", "Carrier channel: red, green or blue (overrides config)")
	rootCmd.PersistentFlags().Float64("strength", 0, "Embedding strength (overrides config)")

	rootCmd.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newCapacityCmd(),
		newInitCmd(),
		newServeCmd(),
	)

	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.GetDefaultConfigPath()
	}
	return path
}

// loadConfig reads the config file when present, then applies the
// environment and the global flags on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path := configPath(cmd)
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("channel") {
		cfg.Stego.Channel, _ = flags.GetString("channel")
	}
	if flags.Changed("strength") {
		cfg.Stego.Strength, _ = flags.GetFloat64("strength")
	}

	return cfg, nil
}

func configFromContext(cmd *cobra.Command) *config.Config {
	if cmd.Context() != nil {
		if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
			return cfg
		}
	}
	return config.DefaultConfig()
}

// newCodec builds the codec and channel selection shared by encode, decode and capacity.
func newCodec(cfg *config.Config) (*stego.Codec, imageio.Channel, error) {
	codec, err := stego.NewCodec(cfg.StegoParams(), cfg.Stego.Verify)
	if err != nil {
		return nil, 0, err
	}
	channel, err := cfg.Channel()
	if err != nil {
		return nil, 0, err
	}
	return codec, channel, nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := imageio.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// skipConfigLoad replaces the root pre-run for commands that manage the
// config file themselves.
func skipConfigLoad(cmd *cobra.Command, args []string) error {
	return nil
}
