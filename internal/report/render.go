package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Adithya-Monish-Kumar-K/wordtree/internal/indexer"
)

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText writes r as aligned plain-text tables.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "size:\t%s (%s bytes)\n", humanize.IBytes(uint64(r.Bytes)), humanize.Comma(int64(r.Bytes)))
	fmt.Fprintf(tw, "lines:\t%s\n", humanize.Comma(int64(r.Lines)))
	fmt.Fprintf(tw, "words:\t%s\n", humanize.Comma(int64(r.Tokens)))

	fmt.Fprintln(tw, "\n== build ==")
	fmt.Fprintln(tw, "tree\tdistinct\theight\troot\tbuild")
	for _, t := range r.Trees {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			strings.ToUpper(string(t.Variant)), t.Words, t.Height, t.Root, formatDuration(t.Build))
	}

	fmt.Fprintf(tw, "\n== search (average of %d) ==\n", r.Repetitions)
	fmt.Fprintln(tw, "word\tfound\toccurrences\tBST\tAVL")
	for _, s := range r.Searches {
		fmt.Fprintf(tw, "%s\t%t\t%d\t%s\t%s\n",
			s.Word, s.Found, s.Occurrences,
			formatDuration(s.Average[indexer.VariantBST]),
			formatDuration(s.Average[indexer.VariantAVL]))
	}

	fmt.Fprintln(tw, "\n== compression ==")
	fmt.Fprintln(tw, "codec\tsize\tratio\tsavings\ttime")
	for _, c := range r.Compression {
		size := humanize.IBytes(uint64(c.Bytes))
		if c.Stored {
			size += " (stored)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.2f%%\t%s\n",
			c.Codec, size, c.Ratio, c.SavingsPercent, formatDuration(c.Duration))
	}
	fmt.Fprintf(tw, "huffman symbols:\t%d\n", r.Huffman.Symbols)
	fmt.Fprintf(tw, "huffman bits/symbol:\t%.3f\n", r.Huffman.AvgCodeLength)

	if len(r.Phases) > 0 {
		fmt.Fprintln(tw, "\n== phases ==")
		for _, p := range r.Phases {
			fmt.Fprintf(tw, "%s\t%s\n", p.Name, formatDuration(p.Duration))
		}
	}

	return tw.Flush()
}

func formatDuration(d time.Duration) string {
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	return fmt.Sprintf("%.4fms", float64(d)/float64(time.Millisecond))
}
