package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel = "tts-1"
	defaultVoice = openai.VoiceAlloy
)

// maxAudioBytes bounds how much of a provider response is buffered.
var maxAudioBytes int64 = 32 << 20

// ErrAudioTooLarge rejects provider responses over maxAudioBytes.
var ErrAudioTooLarge = errors.New("synthesized audio too large")

var knownVoices = map[string]openai.SpeechVoice{
	"alloy":   openai.VoiceAlloy,
	"echo":    openai.VoiceEcho,
	"fable":   openai.VoiceFable,
	"onyx":    openai.VoiceOnyx,
	"nova":    openai.VoiceNova,
	"shimmer": openai.VoiceShimmer,
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string // default: "https://api.openai.com/v1"
	Model   string // default: "tts-1"
}

// OpenAI synthesizes MP3 speech through the OpenAI audio API. The provider
// detects language from the text, so LanguageCode is not sent.
type OpenAI struct {
	client *openai.Client
	model  openai.SpeechModel
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		model:  openai.SpeechModel(model),
	}
}

// voiceFor maps a caller voice id onto a provider voice. Unknown ids fall
// back to the default voice.
func voiceFor(id string) openai.SpeechVoice {
	if v, ok := knownVoices[id]; ok {
		return v
	}
	return defaultVoice
}

func (o *OpenAI) Synthesize(ctx context.Context, req Request) (*Result, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          o.model,
		Input:          req.Text,
		Voice:          voiceFor(req.VoiceID),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(io.LimitReader(resp, maxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if int64(len(audio)) > maxAudioBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrAudioTooLarge, maxAudioBytes)
	}

	return &Result{Audio: audio, ContentType: "audio/mpeg"}, nil
}
