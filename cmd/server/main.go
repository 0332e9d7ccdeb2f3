// Command server wires the reputation engine: stores (memory or Postgres),
// optional Redis score cache, optional Kafka audit sink, feature services,
// and the HTTP transport. Business logic lives in the internal packages;
// main only selects implementations and manages the process lifecycle.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"repute/internal/activity"
	activityHandler "repute/internal/activity/handler"
	"repute/internal/audit"
	auditHandler "repute/internal/audit/handler"
	"repute/internal/endorsement"
	endorsementHandler "repute/internal/endorsement/handler"
	"repute/internal/platform/config"
	"repute/internal/platform/httpserver"
	"repute/internal/platform/jwt"
	"repute/internal/platform/logger"
	"repute/internal/platform/metrics"
	platformredis "repute/internal/platform/redis"
	"repute/internal/privacy"
	privacyHandler "repute/internal/privacy/handler"
	"repute/internal/registry"
	registryHandler "repute/internal/registry/handler"
	"repute/internal/reputation"
	reputationHandler "repute/internal/reputation/handler"
	httptransport "repute/internal/transport/http"
	"repute/internal/verification"
	verificationHandler "repute/internal/verification/handler"
	"repute/pkg/clock"
	"repute/pkg/tx"
)

type stores struct {
	domains       registry.Store
	reputation    reputation.Store
	endorsements  endorsement.Store
	activities    activity.Store
	verifications verification.Store
	providers     verification.ProviderStore
	settings      privacy.SettingsStore
	delegations   privacy.DelegationStore
	audit         audit.Store
}

func memoryStores() stores {
	return stores{
		domains:       registry.NewInMemory(),
		reputation:    reputation.NewInMemory(),
		endorsements:  endorsement.NewInMemory(),
		activities:    activity.NewInMemory(),
		verifications: verification.NewInMemory(),
		providers:     verification.NewInMemoryProviders(),
		settings:      privacy.NewInMemorySettings(),
		delegations:   privacy.NewInMemoryDelegations(),
		audit:         audit.NewInMemoryStore(),
	}
}

func postgresStores(db *sql.DB) stores {
	return stores{
		domains:       registry.NewPostgres(db),
		reputation:    reputation.NewPostgres(db),
		endorsements:  endorsement.NewPostgres(db),
		activities:    activity.NewPostgres(db),
		verifications: verification.NewPostgres(db),
		providers:     verification.NewPostgresProviders(db),
		settings:      privacy.NewPostgresSettings(db),
		delegations:   privacy.NewPostgresDelegations(db),
		audit:         audit.NewPostgres(db),
	}
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()
	clk := clock.NewLogical(0)
	runner := tx.NewSerial()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := map[string]httptransport.HealthChecker{}

	var st stores
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		st = postgresStores(db)
		health["postgres"] = func() error { return db.Ping() }
		log.Info("using postgres stores")
	} else {
		st = memoryStores()
		log.Info("using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = func() error { return redisClient.Health(context.Background()) }
	}
	cache := reputation.NewCache(redisClient, cfg.ScoreCacheTTL, m)

	// Audit trail: services enqueue, the worker delivers to the store and,
	// when configured, Kafka.
	async := audit.NewAsync(1024)
	sinks := []audit.Sink{st.audit}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sinks = append(sinks, kafkaSink)
	}
	worker := audit.NewWorker(async.Inbox(), log, sinks...)

	privacySvc := privacy.NewService(st.settings, st.delegations, st.domains, clk, runner, async, log)
	ledger := reputation.NewLedger(st.reputation, st.domains, privacySvc, log,
		reputation.WithCache(cache), reputation.WithMetrics(m))
	registrySvc := registry.NewService(st.domains, clk, runner, async, log, m)
	endorsementSvc := endorsement.NewService(st.endorsements, st.domains, ledger, privacySvc,
		clk, runner, async, log, m)
	verificationSvc := verification.NewService(st.verifications, st.providers, st.domains,
		ledger, privacySvc, clk, runner, async, log, m)
	activitySvc := activity.NewService(st.activities, st.domains, ledger, verificationSvc,
		privacySvc, clk, runner, async, log, m)

	jwtSvc := jwt.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := httptransport.NewRouter(log, m, clk, jwtSvc, health,
		registryHandler.New(registrySvc, log),
		endorsementHandler.New(endorsementSvc, log),
		activityHandler.New(activitySvc, log),
		verificationHandler.New(verificationSvc, log),
		reputationHandler.New(ledger, log),
		privacyHandler.New(privacySvc, log),
		auditHandler.New(st.audit, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting repute", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
