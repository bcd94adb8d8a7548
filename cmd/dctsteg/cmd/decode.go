/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/dctsteg/pkg/imageio"
	"github.com/ssargent/dctsteg/pkg/stego"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image>",
		Short: "Recover a hidden message",
		Long: `Recover the message hidden in an image by encode.

Channel, strength and positions must match the values used to encode.

Example:
  dctsteg decode stego.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, channel, err := newCodec(configFromContext(cmd))
			if err != nil {
				return err
			}

			img, err := readImage(args[0])
			if err != nil {
				return err
			}

			message, err := codec.Decode(imageio.NewCarrier(img, channel).Grid())
			var checksum *stego.ChecksumMismatchError
			if errors.As(err, &checksum) {
				return fmt.Errorf("message extraction failed - corruption detected: %w", err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), message)
			return nil
		},
	}
}

func newCapacityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <image>",
		Short: "Show how much an image can carry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, channel, err := newCodec(configFromContext(cmd))
			if err != nil {
				return err
			}

			img, err := readImage(args[0])
			if err != nil {
				return err
			}

			b := img.Bounds()
			width, height := b.Dx(), b.Dy()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Image:       %dx%d\n", width, height)
			fmt.Fprintf(out, "Channel:     %s\n", channel)
			fmt.Fprintf(out, "Capacity:    %d bits\n", codec.Capacity(height, width))
			fmt.Fprintf(out, "Max message: %d characters\n", codec.MaxMessageChars(height, width))
			return nil
		},
	}
}
