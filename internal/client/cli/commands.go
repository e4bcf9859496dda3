package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/voxgate/voxgate/internal/client/api"
	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/filex"
)

func (a *App) prompt(value *string, text string) error {
	if *value != "" {
		return nil
	}
	v, err := readLine(a.reader, a.out, text)
	if err != nil {
		return err
	}
	*value = v
	return nil
}

// Register creates an account and prints the issued token and API key.
func (a *App) Register(ctx context.Context, args []string) error {
	var email, name string

	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	fs.StringVar(&name, "name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.prompt(&email, "Email"); err != nil {
		return err
	}
	if err := a.prompt(&name, "Name"); err != nil {
		return err
	}

	password, err := readSecret(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	resp, err := a.api.Register(ctx, email, name, password)
	if err != nil {
		return err
	}
	return a.printJSON(resp)
}

// Login prints a fresh session token and the account API key.
func (a *App) Login(ctx context.Context, args []string) error {
	var email string

	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.StringVar(&email, "email", "", "account email")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := a.login(ctx, email)
	if err != nil {
		return err
	}
	return a.printJSON(resp)
}

func (a *App) login(ctx context.Context, email string) (*api.AuthResponse, error) {
	if err := a.prompt(&email, "Email"); err != nil {
		return nil, err
	}

	password, err := readSecret(a.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(password)

	return a.api.Login(ctx, email, password)
}

// credentials uses the configured API key, or logs in interactively.
func (a *App) credentials(ctx context.Context) (api.Credentials, error) {
	if a.config.APIKey != "" {
		return api.Credentials{APIKey: a.config.APIKey}, nil
	}
	resp, err := a.login(ctx, "")
	if err != nil {
		return api.Credentials{}, err
	}
	return api.Credentials{Token: resp.Token}, nil
}

// Speak synthesizes text and writes the MP3 to -out.
func (a *App) Speak(ctx context.Context, args []string) error {
	var req api.SpeechRequest
	var out string

	fs := flag.NewFlagSet("speak", flag.ContinueOnError)
	fs.StringVar(&req.Text, "text", "", "text to synthesize (defaults to the remaining arguments)")
	fs.StringVar(&req.Voice, "voice", "alloy", "voice id")
	fs.StringVar(&req.Language, "lang", "en-US", "language code")
	fs.StringVar(&req.ProjectID, "project", "", "voice project to append the sample to")
	fs.StringVar(&out, "out", "speech.mp3", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if req.Text == "" {
		req.Text = strings.Join(fs.Args(), " ")
	}
	if err := a.prompt(&req.Text, "Text"); err != nil {
		return err
	}

	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}

	resp, err := a.api.Speak(ctx, creds, req)
	if err != nil {
		return err
	}

	if err := filex.WriteFileAtomic(out, resp.Audio, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	return a.printJSON(map[string]any{
		"out":                 out,
		"bytes":               len(resp.Audio),
		"charactersUsed":      resp.CharactersUsed,
		"charactersRemaining": resp.CharactersRemaining,
	})
}

func (a *App) Usage(ctx context.Context) error {
	creds, err := a.credentials(ctx)
	if err != nil {
		return err
	}

	resp, err := a.api.Usage(ctx, creds)
	if err != nil {
		return err
	}
	return a.printJSON(resp)
}
