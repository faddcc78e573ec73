package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/report"
	"github.com/Adithya-Monish-Kumar-K/wordtree/pkg/postgres"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		asJSON      bool
		save        bool
		repetitions int
		words       []string
	)
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Compare BST and AVL timings and Huffman against zstd and lz4",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			opts := report.OptionsFromConfig(a.cfg)
			if repetitions > 0 {
				opts.Repetitions = repetitions
			}
			if len(words) > 0 {
				opts.SampleWords = words
			}

			rep, err := report.Run(cmd.Context(), args[0], data, opts)
			if err != nil {
				return err
			}
			if asJSON {
				err = rep.WriteJSON(cmd.OutOrStdout())
			} else {
				err = rep.WriteText(cmd.OutOrStdout())
			}
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			if !save && !a.cfg.Report.Save {
				return nil
			}
			db, err := postgres.New(cmd.Context(), a.cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()
			id, err := report.NewStore(db).Save(cmd.Context(), rep)
			if err != nil {
				return err
			}
			slog.Info("report stored", "id", id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "store the report in PostgreSQL")
	cmd.Flags().IntVar(&repetitions, "repetitions", 0, "searches per word and tree (default from config)")
	cmd.Flags().StringArrayVarP(&words, "word", "w", nil, "sample word to time; repeatable")
	return cmd
}
