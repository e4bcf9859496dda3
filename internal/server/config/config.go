// Package config holds the server settings. Values are layered in this
// order, later sources overriding earlier ones: built-in defaults, an
// optional JSON file (-c/-config), environment variables (a .env file is
// loaded first when present), and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/server/models"
)

// MinBcryptCost is the lowest password hashing cost the server starts with.
const MinBcryptCost = 10

// Config holds runtime settings for the voxgate server.
//
// SecretKey signs session tokens and has no default: the server refuses to
// start without it. DatabaseDSN and RedisAddr are optional; when empty the
// in-memory store and the in-process quota lock are used.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string
	LogLevel         string

	SecretKey             string
	TokenValidityDuration time.Duration
	BcryptCost            int

	CORSOrigin      string
	RateLimitWindow time.Duration
	RateLimitMax    int
	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool

	FreeCharactersLimit       int64
	ProCharactersLimit        int64
	EnterpriseCharactersLimit int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	QuotaLockTTL  time.Duration

	OpenAIKey        string
	OpenAIBaseURL    string
	TTSModel         string
	SynthesisTimeout time.Duration

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.EndpointAddrGRPC = ":50051"
	c.LogLevel = "info"

	c.TokenValidityDuration = 30 * 24 * time.Hour
	c.BcryptCost = 10

	c.CORSOrigin = "*"
	c.RateLimitWindow = 15 * time.Minute
	c.RateLimitMax = 100

	c.FreeCharactersLimit = 10000
	c.ProCharactersLimit = 100000
	c.EnterpriseCharactersLimit = 1000000

	c.QuotaLockTTL = 2 * time.Minute

	c.TTSModel = "tts-1"
	c.SynthesisTimeout = time.Minute

	c.S3Region = "us-east-1"
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and flags, in that order.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, common.ErrMissingSecret)
	}
	if c.TokenValidityDuration <= 0 {
		errs = append(errs, errors.New("token validity must be positive"))
	}
	if c.BcryptCost < MinBcryptCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("bcrypt cost %d out of range [%d,%d]", c.BcryptCost, MinBcryptCost, bcrypt.MaxCost))
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMax <= 0 {
		errs = append(errs, errors.New("rate limit window and max must be positive"))
	}
	if c.FreeCharactersLimit < 0 || c.ProCharactersLimit < 0 || c.EnterpriseCharactersLimit < 0 {
		errs = append(errs, errors.New("character limits must not be negative"))
	}
	if c.QuotaLockTTL <= c.SynthesisTimeout {
		errs = append(errs, errors.New("quota lock ttl must exceed the synthesis timeout"))
	}

	return errors.Join(errs...)
}

// CharactersLimit maps a subscription tier to its character cap.
func (c *Config) CharactersLimit(tier models.Tier) int64 {
	switch tier {
	case models.TierPro:
		return c.ProCharactersLimit
	case models.TierEnterprise:
		return c.EnterpriseCharactersLimit
	default:
		return c.FreeCharactersLimit
	}
}
