// Command wordtree builds positional word indexes over text files, compresses
// files with a Huffman codec and serves both over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "wordtree: %v\n", err)
		stop()
		os.Exit(1)
	}
}
