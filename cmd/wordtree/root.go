package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/logger"
)

const defaultConfigPath = "configs/development.yaml"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wordtree",
		Short: "Positional word index (BST and AVL) and Huffman file compression",
		Long: `wordtree indexes every word of a text by line and column in an
unbalanced and a balanced binary search tree, compares the two, and
compresses files with a canonical Huffman container format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "path to config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	root.AddCommand(
		newIndexCmd(a),
		newCompressCmd(a),
		newDecompressCmd(a),
		newReportCmd(a),
		newServeCmd(a),
		newPublishCmd(a),
	)
	return root
}

// load reads the config file. A missing default file falls back to built-in
// defaults; a missing file named with --config is an error.
func (a *app) load(cmd *cobra.Command) error {
	path := a.configPath
	cfg, err := config.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Load("")
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg

	if cmd.Name() == "serve" {
		logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	} else {
		logger.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	}
	slog.Debug("configuration loaded", "path", path, "variant", cfg.Indexer.Variant)
	return nil
}
