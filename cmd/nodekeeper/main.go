package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/nodekeeper/internal/cli"
	"github.com/dmitrijs2005/nodekeeper/internal/config"
	"github.com/dmitrijs2005/nodekeeper/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "nodekeeper:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	app, err := cli.Open(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
