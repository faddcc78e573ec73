package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer/index"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		variant  string
		searches []string
		deletes  []string
		inorder  bool
	)
	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a text file and query the trees",
		Long: `Builds the word index for a text file with the configured tree variants,
reports build time and tree height for each, then runs the requested
deletions, searches and in-order listing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Indexer
			if variant != "" {
				cfg.Variant = variant
			}
			engine, err := indexer.NewEngine(cfg, nil)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			stats, err := engine.IndexText(string(data))
			if err != nil {
				return fmt.Errorf("indexing %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "indexed %s: %d lines, %d words\n", args[0], stats.Lines, stats.Tokens)
			for _, v := range engine.Variants() {
				fmt.Fprintf(out, "  %s: build %s, height %d, %d distinct words\n",
					strings.ToUpper(string(v)), stats.Durations[v], stats.Heights[v], stats.DistinctWords[v])
			}

			for _, w := range deletes {
				removed, err := engine.Delete(w)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "delete %q: %t\n", w, removed)
			}

			for _, w := range searches {
				for _, v := range engine.Variants() {
					occ, found, elapsed, err := engine.Search(v, w)
					if err != nil {
						return err
					}
					if !found {
						fmt.Fprintf(out, "%s %q: not found (%s)\n", strings.ToUpper(string(v)), w, elapsed)
						continue
					}
					fmt.Fprintf(out, "%s %q: %s (%s)\n", strings.ToUpper(string(v)), w, formatOccurrences(occ), elapsed)
				}
			}

			if inorder {
				entries, err := engine.Inorder(engine.Variants()[0])
				if err != nil {
					return err
				}
				writeEntries(out, entries)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "trees to build: bst, avl or both (default from config)")
	cmd.Flags().StringArrayVarP(&searches, "search", "s", nil, "word to look up; repeatable")
	cmd.Flags().StringArrayVar(&deletes, "delete", nil, "word to delete before searching; repeatable")
	cmd.Flags().BoolVar(&inorder, "inorder", false, "print every word in alphabetical order")
	return cmd
}

func formatOccurrences(occ []index.Occurrence) string {
	parts := make([]string, len(occ))
	for i, o := range occ {
		parts[i] = fmt.Sprintf("(%d,%d)", o.Line, o.Column)
	}
	return strings.Join(parts, " ")
}

func writeEntries(w io.Writer, entries []index.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s: %s\n", e.Word, formatOccurrences(e.Occurrences))
	}
}
