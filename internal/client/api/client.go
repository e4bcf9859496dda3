// Package api is a small HTTP client for the voxgate JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable reports that the server could not be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx response carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Credentials authenticate a request: a session token or an API key.
type Credentials struct {
	Token  string
	APIKey string
}

func (c Credentials) apply(req *http.Request) {
	switch {
	case c.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.Token)
	case c.APIKey != "":
		req.Header.Set("X-API-Key", c.APIKey)
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type AuthResponse struct {
	ID     string `json:"id,omitempty"`
	Token  string `json:"token"`
	APIKey string `json:"apiKey"`
}

type SpeechRequest struct {
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	Language  string `json:"language"`
	ProjectID string `json:"projectId,omitempty"`
}

type SpeechResponse struct {
	Audio               []byte `json:"-"`
	AudioContent        string `json:"audioContent"`
	ContentType         string `json:"contentType"`
	CharactersUsed      int64  `json:"charactersUsed"`
	CharactersRemaining int64  `json:"charactersRemaining"`
}

type UsageResponse struct {
	Tier                string `json:"tier"`
	CharactersUsed      int64  `json:"charactersUsed"`
	CharactersLimit     int64  `json:"charactersLimit"`
	CharactersRemaining int64  `json:"charactersRemaining"`
}

func (c *Client) Register(ctx context.Context, email, name string, password []byte) (*AuthResponse, error) {
	body, err := credentialBody(map[string]string{"email": email, "name": name}, password)
	if err != nil {
		return nil, err
	}
	defer wipeBody(body)

	var out AuthResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/register", Credentials{}, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email string, password []byte) (*AuthResponse, error) {
	body, err := credentialBody(map[string]string{"email": email}, password)
	if err != nil {
		return nil, err
	}
	defer wipeBody(body)

	var out AuthResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", Credentials{}, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Speak synthesizes req and decodes the returned audio.
func (c *Client) Speak(ctx context.Context, creds Credentials, req SpeechRequest) (*SpeechResponse, error) {
	var out SpeechResponse
	if err := c.do(ctx, http.MethodPost, "/api/voice/generate", creds, req, &out); err != nil {
		return nil, err
	}

	audio, err := base64.StdEncoding.DecodeString(out.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	out.Audio = audio
	out.AudioContent = ""
	return &out, nil
}

func (c *Client) Usage(ctx context.Context, creds Credentials) (*UsageResponse, error) {
	var out UsageResponse
	if err := c.do(ctx, http.MethodGet, "/api/voice/usage", creds, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, creds Credentials, in, out any) error {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = b
	}
	return c.send(ctx, method, path, creds, body, out)
}

// send issues a request with an already encoded JSON body, nil for none.
func (c *Client) send(ctx context.Context, method, path string, creds Credentials, body []byte, out any) error {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	creds.apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var e struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil || e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
