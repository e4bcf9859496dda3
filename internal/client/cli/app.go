// Package cli implements the voxgate command-line client: account
// registration and login, speech synthesis to an MP3 file, and usage
// reporting. Nothing is stored on disk besides the requested audio.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/voxgate/voxgate/internal/client/api"
	"github.com/voxgate/voxgate/internal/client/config"
)

// ErrUsage is returned for an unknown or missing subcommand.
var ErrUsage = errors.New("usage: voxgate-cli [-s URL] [-k API_KEY] register|login|speak|usage [flags]")

// Prompt hooks, replaced in tests.
var (
	readLine   = ReadLine
	readSecret = ReadSecret
)

type App struct {
	config *config.Config
	api    *api.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	return &App{
		config: c,
		api:    api.NewClient(c.ServerURL, c.RequestTimeout),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
}

// splitCommand drops the global flags from args and returns the subcommand
// name with its own arguments.
func splitCommand(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return arg, args[i+1:]
		}
		if strings.Contains(arg, "=") {
			continue
		}
		if slices.Contains(config.GlobalFlags, arg) && i+1 < len(args) {
			i++
		}
	}
	return "", nil
}

// Run executes the subcommand named in args (usually os.Args[1:]).
func (a *App) Run(ctx context.Context, args []string) error {
	cmd, rest := splitCommand(args)

	switch cmd {
	case "register":
		return a.Register(ctx, rest)
	case "login":
		return a.Login(ctx, rest)
	case "speak":
		return a.Speak(ctx, rest)
	case "usage":
		return a.Usage(ctx)
	default:
		return ErrUsage
	}
}

func (a *App) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}
