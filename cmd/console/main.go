package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"procurement-console/internal/adapters/cli"
	"procurement-console/internal/client"
	"procurement-console/internal/config"
)

func main() {
	cfg, err := config.Load(os.Getenv("PO_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg.Console.Token == "" {
		fmt.Fprintln(os.Stderr, "Warning: console.token (PO_CONSOLE_TOKEN) is not set; requests will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(cfg.Console.APIURL, cfg.Console.Token, nil)
	if err := cli.Run(ctx, c, cfg.Console.Token, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
