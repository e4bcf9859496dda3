package models

import "time"

const (
	DefaultStability       = 0.5
	DefaultSimilarityBoost = 0.75
)

// VoiceProject groups generated samples under a name owned by one account.
type VoiceProject struct {
	ID          string        `json:"id"`
	AccountID   string        `json:"accountId"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	IsPublic    bool          `json:"isPublic"`
	Samples     []VoiceSample `json:"voiceSamples"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// VoiceSample is one archived synthesis result.
type VoiceSample struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	AudioURL        string    `json:"audioUrl"`
	Stability       float64   `json:"stability"`
	SimilarityBoost float64   `json:"similarityBoost"`
	CreatedAt       time.Time `json:"createdAt"`
}
