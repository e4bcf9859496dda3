package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/voxgate/voxgate/internal/client/cli"
	"github.com/voxgate/voxgate/internal/client/config"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := cli.NewApp(cfg).Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}

}
