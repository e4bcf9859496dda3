package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests. A missing .env file is not an error.
var loadDotEnv = func() { _ = godotenv.Load() }

// parseEnv overlays environment variables onto config. Only variables that
// are set are applied.
func parseEnv(config *Config) error {
	loadDotEnv()

	envString("VOXGATE_HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("VOXGATE_GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("VOXGATE_DATABASE_DSN", &config.DatabaseDSN)
	envString("VOXGATE_LOG_LEVEL", &config.LogLevel)
	envString("JWT_SECRET", &config.SecretKey)
	envString("VOXGATE_SECRET_KEY", &config.SecretKey)
	envString("CORS_ORIGIN", &config.CORSOrigin)
	envString("VOXGATE_REDIS_ADDR", &config.RedisAddr)
	envString("VOXGATE_REDIS_PASSWORD", &config.RedisPassword)
	envString("OPENAI_API_KEY", &config.OpenAIKey)
	envString("VOXGATE_OPENAI_BASE_URL", &config.OpenAIBaseURL)
	envString("VOXGATE_TTS_MODEL", &config.TTSModel)
	envString("VOXGATE_S3_ROOT_USER", &config.S3RootUser)
	envString("VOXGATE_S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("VOXGATE_S3_BUCKET", &config.S3Bucket)
	envString("VOXGATE_S3_REGION", &config.S3Region)
	envString("VOXGATE_S3_ENDPOINT", &config.S3BaseEndpoint)

	if err := envDuration("VOXGATE_TOKEN_TTL", &config.TokenValidityDuration); err != nil {
		return err
	}
	if err := envDuration("VOXGATE_RATE_LIMIT_WINDOW", &config.RateLimitWindow); err != nil {
		return err
	}
	if err := envDuration("VOXGATE_QUOTA_LOCK_TTL", &config.QuotaLockTTL); err != nil {
		return err
	}
	if err := envDuration("VOXGATE_SYNTHESIS_TIMEOUT", &config.SynthesisTimeout); err != nil {
		return err
	}
	if err := envInt("VOXGATE_BCRYPT_COST", &config.BcryptCost); err != nil {
		return err
	}
	if err := envInt("VOXGATE_RATE_LIMIT_MAX", &config.RateLimitMax); err != nil {
		return err
	}
	if err := envBool("VOXGATE_TRUST_PROXY", &config.TrustProxyHeaders); err != nil {
		return err
	}
	if err := envInt("VOXGATE_REDIS_DB", &config.RedisDB); err != nil {
		return err
	}
	if err := envInt64("VOXGATE_FREE_CHARACTERS_LIMIT", &config.FreeCharactersLimit); err != nil {
		return err
	}
	if err := envInt64("VOXGATE_PRO_CHARACTERS_LIMIT", &config.ProCharactersLimit); err != nil {
		return err
	}
	return envInt64("VOXGATE_ENTERPRISE_CHARACTERS_LIMIT", &config.EnterpriseCharactersLimit)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envInt64(key string, dst *int64) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}
