package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Parley/internal/adapters/auth"
	"github.com/dkeye/Parley/internal/adapters/bus"
	router "github.com/dkeye/Parley/internal/adapters/http"
	"github.com/dkeye/Parley/internal/adapters/presence"
	"github.com/dkeye/Parley/internal/adapters/storage/memory"
	"github.com/dkeye/Parley/internal/adapters/storage/mongodb"
	"github.com/dkeye/Parley/internal/app"
	"github.com/dkeye/Parley/internal/app/orch"
	"github.com/dkeye/Parley/internal/config"
	"github.com/dkeye/Parley/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var (
		mirror *presence.RedisMirror
		dir    router.PresenceDirectory
	)
	if cfg.Redis.Addr != "" {
		host, _ := os.Hostname()
		mirror, err = presence.NewRedisMirror(ctx, presence.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.PresenceTTL,
			Node:     host + "/" + uuid.NewString(),
		})
		if err != nil {
			return err
		}
		defer mirror.Close()
		dir = mirror
	}

	opts := orch.Options{
		Policy:        app.PolicyFor(cfg.SlowPolicy),
		NotifyEvicted: cfg.Presence.NotifyEvicted,
		RejectBusy:    cfg.Calls.RejectBusy,
	}
	if mirror != nil {
		opts.Mirror = mirror
	}
	o := orch.New(store, opts)
	verifier := auth.NewJWTVerifier(cfg.Auth.Secret, cfg.Auth.Issuer)

	g, gctx := errgroup.WithContext(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(gctx, cfg, o, verifier, store, dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Parley server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if mirror != nil {
		g.Go(func() error {
			o.Presence.KeepAlive(gctx, mirror.TTL()/2)
			return nil
		})
	}

	if cfg.NATS.URL != "" {
		nc, err := bus.Connect(cfg.NATS.URL, "parley")
		if err != nil {
			return err
		}
		defer nc.Close()
		bridge := bus.NewBridge(nc, cfg.NATS.Subject, o.Chat)
		g.Go(func() error { return bridge.Run(gctx) })
	}

	err = g.Wait()
	o.Presence.Wait()
	return err
}

func openStore(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	switch cfg.Store.Driver {
	case "mongo":
		s, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Str("module", "main").Msg("ensure indexes")
		}
		return s, func() {
			if err := s.Close(context.Background()); err != nil {
				log.Warn().Err(err).Str("module", "main").Msg("close mongo")
			}
		}, nil
	default:
		log.Warn().Str("module", "main").Msg("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}
}
