package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"procurement-console/internal/config"
	"procurement-console/internal/logger"
	"procurement-console/migrations"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-config file] [up|status]")
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.App.Env)
	if cfg.Database.URL == "" {
		log.Error("database.url is not set")
		os.Exit(1)
	}

	cmd := "up"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx := context.Background()
	switch cmd {
	case "up":
		err = migrations.Up(ctx, cfg.Database.URL)
	case "status":
		err = migrations.Status(ctx, cfg.Database.URL)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error("migrate failed", "cmd", cmd, "err", err)
		os.Exit(1)
	}
	log.Info("migrate done", "cmd", cmd)
}
