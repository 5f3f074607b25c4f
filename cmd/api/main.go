package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/ouvidoria/internal/ai"
	"github.com/gestaozabele/ouvidoria/internal/auth"
	"github.com/gestaozabele/ouvidoria/internal/catalog"
	"github.com/gestaozabele/ouvidoria/internal/config"
	"github.com/gestaozabele/ouvidoria/internal/db"
	"github.com/gestaozabele/ouvidoria/internal/geo"
	internalhttp "github.com/gestaozabele/ouvidoria/internal/http"
	"github.com/gestaozabele/ouvidoria/internal/identity"
	"github.com/gestaozabele/ouvidoria/internal/report"
	"github.com/gestaozabele/ouvidoria/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	var (
		catalogRepo catalog.Repository
		userRepo    identity.Repository
		reportRepo  report.Repository
	)

	switch cfg.Store {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		defer pool.Close()

		catalogRepo = catalog.NewPostgresRepository(pool)
		userRepo = identity.NewPostgresRepository(pool)
		reportRepo = report.NewPostgresRepository(pool)
		log.Info().Msg("store: postgres")
	default:
		catalogRepo = catalog.NewMemoryRepository()
		userRepo = identity.NewMemoryRepository()
		reportRepo = report.NewMemoryRepository()
		log.Info().Msg("store: memória")
	}

	var tokens service.TokenStore = service.NewMemoryTokenStore()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		tokens = service.NewRedisTokenStore(redisClient)
	}

	catalogStore := catalog.NewStore(catalogRepo)
	users := identity.NewService(userRepo)
	reports := report.NewService(reportRepo)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(users, tokens, jwtManager, cfg.JWTRefreshTTL)

	analyzer := ai.New(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
	geocoder := geo.New(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)

	handler := internalhttp.NewRouter(cfg, catalogStore, users, reports, authService, analyzer, geocoder)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
