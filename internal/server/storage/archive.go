// Package storage archives synthesized audio for voice project samples.
package storage

import (
	"context"
	"encoding/base64"
)

// AudioArchive stores audio and returns a URL it can be fetched from.
type AudioArchive interface {
	Put(ctx context.Context, accountID string, audio []byte, contentType string) (string, error)
}

// DataURLArchive stores nothing; it encodes the audio inline as a data URL.
type DataURLArchive struct{}

func (DataURLArchive) Put(_ context.Context, _ string, audio []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(audio), nil
}
