package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/voxgate/voxgate/internal/flagx"
	"github.com/voxgate/voxgate/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Durations accept
// either "15m"-style strings or integer nanoseconds. Zero values leave the
// corresponding setting untouched.
type JSONConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	DatabaseDSN      string `json:"database_dsn"`
	LogLevel         string `json:"log_level"`

	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	BcryptCost            int            `json:"bcrypt_cost"`

	CORSOrigin        string         `json:"cors_origin"`
	RateLimitWindow   timex.Duration `json:"rate_limit_window"`
	RateLimitMax      int            `json:"rate_limit_max"`
	TrustProxyHeaders *bool          `json:"trust_proxy_headers"`

	FreeCharactersLimit       int64 `json:"free_characters_limit"`
	ProCharactersLimit        int64 `json:"pro_characters_limit"`
	EnterpriseCharactersLimit int64 `json:"enterprise_characters_limit"`

	RedisAddr     string         `json:"redis_addr"`
	RedisPassword string         `json:"redis_password"`
	RedisDB       int            `json:"redis_db"`
	QuotaLockTTL  timex.Duration `json:"quota_lock_ttl"`

	OpenAIKey        string         `json:"openai_api_key"`
	OpenAIBaseURL    string         `json:"openai_base_url"`
	TTSModel         string         `json:"tts_model"`
	SynthesisTimeout timex.Duration `json:"synthesis_timeout"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJSON overlays the file named by -c/-config onto config. Without the
// flag it does nothing.
func parseJSON(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.TokenValidityDuration, c.TokenValidityDuration)
	setInt(&config.BcryptCost, c.BcryptCost)
	setString(&config.CORSOrigin, c.CORSOrigin)
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
	setInt(&config.RateLimitMax, c.RateLimitMax)
	if c.TrustProxyHeaders != nil {
		config.TrustProxyHeaders = *c.TrustProxyHeaders
	}
	setInt64(&config.FreeCharactersLimit, c.FreeCharactersLimit)
	setInt64(&config.ProCharactersLimit, c.ProCharactersLimit)
	setInt64(&config.EnterpriseCharactersLimit, c.EnterpriseCharactersLimit)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setDuration(&config.QuotaLockTTL, c.QuotaLockTTL)
	setString(&config.OpenAIKey, c.OpenAIKey)
	setString(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setString(&config.TTSModel, c.TTSModel)
	setDuration(&config.SynthesisTimeout, c.SynthesisTimeout)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setInt64(dst *int64, v int64) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
