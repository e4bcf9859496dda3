package config

import (
	"flag"
	"os"
	"time"

	"github.com/voxgate/voxgate/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   HTTP bind address (e.g. ":3000")
//	-g string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   session token signing secret
//	-t int      session token validity, hours
//	-r string   Redis address for the distributed quota lock
//	-k string   OpenAI API key
//	-b string   S3 bucket for voice samples
//	-e string   S3 base endpoint
//	-l string   log level
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-r", "-k", "-b", "-e", "-l"})

	fs := flag.NewFlagSet("voxgate", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	tokenHours := fs.Int("t", int(config.TokenValidityDuration.Hours()), "token validity (in hours)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")
	fs.StringVar(&config.OpenAIKey, "k", config.OpenAIKey, "OpenAI API key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenHours) * time.Hour
		}
	})
	return nil
}
