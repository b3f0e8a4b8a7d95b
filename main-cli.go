//go:build !windows || dev

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bartek5186/supplier2woo/internal/cli"
)

// wersję możesz nadpisać przez: -ldflags "-X 'main.ver=1.0.1'"
var ver = "1.0.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.New(ver).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Błąd:", err)
		cancel()
		os.Exit(1)
	}
}
