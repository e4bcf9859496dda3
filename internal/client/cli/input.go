package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var (
	readPassword = term.ReadPassword
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

// ReadLine asks for label on w and returns the next line from r, trimmed.
// An unterminated last line still counts as an answer.
func ReadLine(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", label); err != nil {
		return "", err
	}

	line, err := r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads the account password from the terminal with echo off.
// Callers own the result and zero it when done.
func ReadSecret(w io.Writer) ([]byte, error) {
	if _, err := io.WriteString(w, "Password: "); err != nil {
		return nil, err
	}
	secret, err := readPassword(stdinFd())
	// echo was off, so the user's Enter never reached w
	_, _ = io.WriteString(w, "\n")
	return secret, err
}
