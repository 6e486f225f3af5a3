package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medviet/clinic-booking/internal/api"
	"github.com/medviet/clinic-booking/internal/auth"
	"github.com/medviet/clinic-booking/internal/clinic"
	"github.com/medviet/clinic-booking/internal/config"
	"github.com/medviet/clinic-booking/internal/db"
	redisclient "github.com/medviet/clinic-booking/internal/redis"
	"github.com/medviet/clinic-booking/internal/specialty"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Redis only backs the specialty cache; the server runs without it.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Printf("redis unavailable, specialty cache disabled: %v", err)
			rdb = nil
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Printf("error closing redis: %v", err)
				}
			}()
			log.Println("connected to Redis")
		}
	}

	classifier := buildClassifier(rootCtx, cfg, rdb)

	repo := clinic.NewPgRepository(pgPool)
	svc := clinic.NewService(repo, classifier)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Repo:    repo,
		Tokens:  tokens,
		PgPool:  pgPool,
		Redis:   rdb,
		Env:     cfg.Env,
		Version: version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	case <-rootCtx.Done():
	}

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// buildClassifier assembles the two-tier classifier: Gemini primary when an
// API key is configured, keyword rules as fallback, and a Redis cache in
// front of the pair when Redis is up.
func buildClassifier(ctx context.Context, cfg config.Config, rdb *redis.Client) specialty.Classifier {
	var primary specialty.Classifier
	if cfg.GeminiAPIKey != "" {
		gemini, err := specialty.NewGeminiClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("gemini classifier unavailable, keyword rules only: %v", err)
		} else {
			primary = gemini
			log.Printf("gemini classifier enabled model=%s", cfg.GeminiModel)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, keyword rules only")
	}

	var classifier specialty.Classifier = specialty.NewDegrading(
		primary,
		specialty.KeywordClassifier{},
		cfg.ClassifierTimeout,
		nil,
	)

	if rdb != nil {
		classifier = specialty.NewCached(classifier, rdb, cfg.SpecialtyCacheTTL, nil)
	}

	return classifier
}
