// Package server wires the voxgate components together and runs the HTTP
// and gRPC listeners until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/config"
	"github.com/voxgate/voxgate/internal/server/metrics"
	"github.com/voxgate/voxgate/internal/server/quota"
	"github.com/voxgate/voxgate/internal/server/repositories/repomanager"
	"github.com/voxgate/voxgate/internal/server/services"
	"github.com/voxgate/voxgate/internal/server/storage"
	"github.com/voxgate/voxgate/internal/server/tts"

	gs "github.com/voxgate/voxgate/internal/server/grpc"
	hs "github.com/voxgate/voxgate/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	redis       *redis.Client
	httpServer  *hs.Server
	grpcServer  *gs.GRPCServer
}

// NewApp builds every component from c. Backends with no configuration fall
// back to in-process implementations.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	tokens, err := auth.NewTokenService(c.SecretKey, c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}
	hasher, err := auth.NewPasswordHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	rm, err := app.initRepositories(ctx)
	if err != nil {
		return nil, err
	}
	app.repomanager = rm

	locker, err := app.initLocker(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	archive, err := app.initArchive(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("metrics init error: %w", err)
	}

	guard := quota.NewGuard(rm.Accounts(), locker, logger, m)
	authn := auth.NewAuthenticator(tokens, rm.Accounts())
	as := services.NewAccountService(rm, tokens, hasher, c, logger)
	vs := services.NewVoiceService(rm, guard, app.initSynthesizer(ctx), archive, m, logger, c.SynthesisTimeout)

	router := hs.NewRouter(hs.NewHandler(as, vs, logger), authn, hs.RouterConfig{
		CORSOrigin:        c.CORSOrigin,
		RateLimitWindow:   c.RateLimitWindow,
		RateLimitMax:      c.RateLimitMax,
		TrustProxyHeaders: c.TrustProxyHeaders,
	}, logger, m, reg)

	app.httpServer = hs.NewServer(c.EndpointAddrHTTP, router, c.SynthesisTimeout+30*time.Second, logger)
	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, authn, vs)

	return app, nil
}

func (app *App) initRepositories(ctx context.Context) (repomanager.RepositoryManager, error) {
	if app.config.DatabaseDSN == "" {
		app.logger.Warn(ctx, "no database configured, using in-memory store")
		return repomanager.NewMemoryRepositoryManager(), nil
	}

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, app.config.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		rm.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}
	return rm, nil
}

func (app *App) initLocker(ctx context.Context) (quota.Locker, error) {
	if app.config.RedisAddr == "" {
		return quota.NewLocalLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     app.config.RedisAddr,
		Password: app.config.RedisPassword,
		DB:       app.config.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.redis = client
	return quota.NewRedisLocker(client, app.config.QuotaLockTTL), nil
}

func (app *App) initArchive(ctx context.Context) (storage.AudioArchive, error) {
	if app.config.S3Bucket == "" {
		return storage.DataURLArchive{}, nil
	}

	archive, err := storage.NewS3Archive(ctx, storage.S3Config{
		AccessKey:    app.config.S3RootUser,
		SecretKey:    app.config.S3RootPassword,
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return archive, nil
}

func (app *App) initSynthesizer(ctx context.Context) tts.Synthesizer {
	if app.config.OpenAIKey == "" {
		app.logger.Warn(ctx, "no synthesis provider configured, generate requests will fail")
		return tts.Unconfigured{}
	}
	return tts.NewOpenAI(tts.OpenAIConfig{
		APIKey:  app.config.OpenAIKey,
		BaseURL: app.config.OpenAIBaseURL,
		Model:   app.config.TTSModel,
	})
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a listener fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.grpcServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "grpc server failed", "error", err)
			cancelFunc()
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server failed", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(ctx, "App stopped")
}

// Close releases the database pool and the Redis client.
func (app *App) Close() {
	if app.repomanager != nil {
		if err := app.repomanager.Close(); err != nil {
			app.logger.Error(context.Background(), "close repositories", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(context.Background(), "close redis", "error", err)
		}
	}
}
