package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/codec/huffman"
)

func newCompressCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compress <file>",
		Short: "Compress a file into a Huffman container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if output == "" {
				output = huffman.CompressedPath(in, a.cfg.Codec.OutputDir, a.cfg.Codec.Extension)
			}
			res, c, err := huffman.CompressFile(in, output)
			if err != nil {
				return err
			}
			stats := c.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s\n", res.Input, res.Output)
			fmt.Fprintf(out, "original:   %d bytes\n", res.InputBytes)
			fmt.Fprintf(out, "compressed: %d bytes\n", res.OutputBytes)
			fmt.Fprintf(out, "savings:    %.2f%%\n", stats.SavingsPercent)
			fmt.Fprintf(out, "symbols:    %d, %.3f bits/symbol\n", stats.Symbols, stats.AvgCodeLength)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "container path (default <name><extension> next to the input or in codec.outputDir)")
	return cmd
}

func newDecompressCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "decompress <file>",
		Short: "Restore a file from a Huffman container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if output == "" {
				output = huffman.DecompressedPath(in, a.cfg.Codec.OutputDir)
			}
			res, err := huffman.DecompressFile(in, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d bytes)\n", res.Input, res.Output, res.OutputBytes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <name>_decomp.txt)")
	return cmd
}
