/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/dctsteg/pkg/frame"
	"github.com/ssargent/dctsteg/pkg/imageio"
)

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Hide a message in an image",
		Long: `Hide a message in one color channel of an image and write the result.

The output format follows the output file extension unless --format is given.
Only lossless formats are written: png, bmp and tiff.

Examples:
  dctsteg encode --in carrier.png --out stego.png --message "hi"
  dctsteg encode --in photo.jpg --out stego.tiff --message-file note.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, _ := cmd.Flags().GetString("in")
			out, _ := cmd.Flags().GetString("out")

			message, err := readMessage(cmd)
			if err != nil {
				return err
			}

			formatName, _ := cmd.Flags().GetString("format")
			if !cmd.Flags().Changed("format") {
				formatName = strings.TrimPrefix(filepath.Ext(out), ".")
			}
			format, err := imageio.ParseFormat(formatName)
			if err != nil {
				return err
			}

			codec, channel, err := newCodec(configFromContext(cmd))
			if err != nil {
				return err
			}

			img, err := readImage(in)
			if err != nil {
				return err
			}

			carrier := imageio.NewCarrier(img, channel)
			encoded, err := codec.Encode(carrier.Grid(), message)
			if err != nil {
				return err
			}
			result, err := carrier.Image(encoded)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			if err := imageio.Encode(f, result, format); err != nil {
				f.Close()
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			width, height := carrier.Size()
			cmd.Printf("Embedded %d bytes into %s (%dx%d, %s channel, %d of %d bits)\n",
				len(message), out, width, height, channel, frame.RequiredBits(len(message)), codec.Capacity(height, width))
			return nil
		},
	}

	encodeCmd.Flags().String("in", "", "Carrier image (required)")
	encodeCmd.Flags().String("out", "", "Output image (required)")
	encodeCmd.Flags().StringP("message", "m", "", "Message to embed")
	encodeCmd.Flags().String("message-file", "", "Read the message from a file")
	encodeCmd.Flags().String("format", "", "Output format: png, bmp or tiff")
	_ = encodeCmd.MarkFlagRequired("in")
	_ = encodeCmd.MarkFlagRequired("out")
	encodeCmd.MarkFlagsMutuallyExclusive("message", "message-file")

	return encodeCmd
}

func readMessage(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("message-file") {
		path, _ := cmd.Flags().GetString("message-file")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read message file: %w", err)
		}
		return string(data), nil
	}
	if cmd.Flags().Changed("message") {
		return cmd.Flags().GetString("message")
	}
	return "", fmt.Errorf("a message is required (--message or --message-file)")
}
