package config

import (
	"flag"
	"os"

	"github.com/voxgate/voxgate/internal/flagx"
)

// GlobalFlags lists the flags owned by this package. Everything else on the
// command line belongs to the subcommand.
var GlobalFlags = []string{"-s", "-t", "-k", "-c", "-config"}

func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-t", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the voxgate API")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key")

	return fs.Parse(args)
}
