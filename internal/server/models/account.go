// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// Tier is the subscription plan of an account. It selects the character cap.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

// Account is one registered identity together with its usage counters.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"-"`
	Name         string `json:"name"`
	APIKey       string `json:"apiKey"`
	Tier         Tier   `json:"tier"`

	CharactersUsed  int64 `json:"charactersUsed"`
	CharactersLimit int64 `json:"charactersLimit"`

	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`

	// Version is bumped on every Save and guards against lost updates.
	Version int64 `json:"-"`
}

// Remaining returns the characters still available, never below zero.
func (a *Account) Remaining() int64 {
	if r := a.CharactersLimit - a.CharactersUsed; r > 0 {
		return r
	}
	return 0
}

// Clone returns a copy that shares no mutable state with a.
func (a *Account) Clone() *Account {
	c := *a
	if a.PasswordHash != nil {
		c.PasswordHash = append([]byte(nil), a.PasswordHash...)
	}
	return &c
}

// NormalizeEmail returns the canonical form used for identity lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
