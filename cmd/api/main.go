// Command api runs the notes HTTP service.
//
// @title                      Notes API
// @version                    1.0
// @description                Notes service with bearer-token auth, sharing and bookmarks.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/quicknotes/notes-api/internal/api"
	"github.com/quicknotes/notes-api/internal/auth"
	"github.com/quicknotes/notes-api/internal/core/ports"
	"github.com/quicknotes/notes-api/internal/core/service"
	"github.com/quicknotes/notes-api/internal/infrastructure/db/memory"
	mongostore "github.com/quicknotes/notes-api/internal/infrastructure/db/mongo"
	redisstore "github.com/quicknotes/notes-api/internal/infrastructure/db/redis"
	"github.com/quicknotes/notes-api/internal/infrastructure/http/handlers"
	"github.com/quicknotes/notes-api/internal/infrastructure/queue"
	"github.com/quicknotes/notes-api/internal/pkg/config"
	"github.com/quicknotes/notes-api/pkg/logger"
)

func main() {
	// A .env file is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty && !cfg.IsProduction(),
		Service: "notes-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// stores bundles the repositories and side resources selected by STORE_DRIVER.
type stores struct {
	users    ports.UserRepository
	notes    ports.NoteRepository
	recorder ports.ActivityRecorder
	checks   []handlers.Check
	close    func(ctx context.Context)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		seq := memory.NewSequence()
		return &stores{
			users:    memory.NewUserRepository(seq),
			notes:    memory.NewNoteRepository(seq),
			recorder: queue.NewLogRecorder(log),
			close:    func(context.Context) {},
		}, nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	seq, err := redisstore.OpenSequence(ctx, cfg.Redis)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &stores{
		users:    mongostore.NewUserRepository(db, seq),
		notes:    mongostore.NewNoteRepository(db, seq),
		recorder: mongostore.NewActivityRepository(db),
		checks: []handlers.Check{
			{Name: "mongodb", Ping: mongostore.Ping(db)},
			{Name: "redis", Ping: seq.Ping},
		},
		close: func(ctx context.Context) {
			_ = seq.Close()
			_ = client.Disconnect(ctx)
		},
	}, nil
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}

	// Workers outlive ctx so queued activity is drained on shutdown.
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher := queue.NewDispatcher(cfg.ActivityWorkers, st.recorder, log)
	dispatcher.Start(workerCtx)

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	e := api.NewRouter(api.Deps{
		AuthService: service.NewAuthService(st.users, tokens, log),
		NoteService: service.NewNoteService(st.notes, st.users, dispatcher, log),
		Verifier:    tokens,
		Logger:      log,
		Checks:      st.checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	dispatcher.Close()
	st.close(shutdownCtx)

	log.Info().Msg("server stopped cleanly")
	return nil
}
