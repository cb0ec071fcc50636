package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	identitystore "zonegate/internal/identity/store"
	jwttoken "zonegate/internal/jwt_token"
	"zonegate/internal/platform/config"
	"zonegate/internal/platform/httpserver"
	"zonegate/internal/platform/logger"
	"zonegate/internal/platform/metrics"
	"zonegate/internal/platform/middleware"
	platformredis "zonegate/internal/platform/redis"
	"zonegate/internal/session"
	"zonegate/internal/session/revocation"
	sessionstore "zonegate/internal/session/store"
	httptransport "zonegate/internal/transport/http"
	"zonegate/internal/zone"
	"zonegate/pkg/platform/audit"
	auditkafka "zonegate/pkg/platform/audit/kafka"
	auditmemory "zonegate/pkg/platform/audit/memory"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	users, db, err := buildIdentityStore(cfg.Postgres)
	if err != nil {
		log.Error("identity store setup failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	var webSessions sessionstore.WebSessionStore
	if redisClient != nil {
		webSessions = sessionstore.NewRedis(redisClient.Client)
	} else {
		webSessions = sessionstore.NewInMemory()
	}

	tokens, err := jwttoken.New(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	if err != nil {
		log.Error("token service setup failed", "error", err)
		os.Exit(1)
	}

	auditSink, err := buildAuditSink(cfg.Audit, log)
	if err != nil {
		log.Error("audit sink setup failed", "error", err)
		os.Exit(1)
	}
	defer auditSink.Close()

	var resolverOpts []session.ResolverOption
	if cfg.Zones.DenylistEnabled {
		if redisClient == nil {
			log.Error("ZONE_DENYLIST_ENABLED requires REDIS_URL")
			os.Exit(1)
		}
		resolverOpts = append(resolverOpts, session.WithDenylist(revocation.NewRedis(redisClient.Client)))
	}
	resolver := session.NewResolver(jwttoken.NewServiceAdapter(tokens), users, webSessions, log, resolverOpts...)

	guard := zone.NewGuard(zone.WithOnboardingEnforcement(cfg.Zones.EnforceOnboarding))
	gate := middleware.NewZoneGate(guard, resolver, m, log, middleware.WithAudit(auditSink))

	handler := httptransport.NewAuthHandler(resolver, tokens, users, m, log, httptransport.WithAudit(auditSink))
	router := httptransport.NewRouter(handler, gate)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting zonegate", "addr", cfg.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("zonegate stopped")
}

// buildIdentityStore returns the Postgres-backed store when a database URL is
// configured and the in-memory store otherwise. The *sql.DB is returned so
// main owns its lifecycle.
func buildIdentityStore(cfg config.Postgres) (identitystore.Store, *sql.DB, error) {
	if cfg.URL == "" {
		return identitystore.NewInMemory(), nil, nil
	}
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}
	return identitystore.NewPostgres(db), db, nil
}

// buildAuditSink returns a Kafka publisher when brokers are configured and the
// in-memory store otherwise.
func buildAuditSink(cfg config.Audit, log *slog.Logger) (audit.Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return auditmemory.NewStore(), nil
	}
	return auditkafka.NewPublisher(cfg.Brokers, cfg.Topic, log)
}
