package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"railguard/internal/audit"
	"railguard/internal/gateway"
	"railguard/internal/identity"
	identityhandler "railguard/internal/identity/handler"
	identitystore "railguard/internal/identity/store"
	"railguard/internal/jwttoken"
	"railguard/internal/ledger"
	"railguard/internal/platform/config"
	"railguard/internal/platform/httpserver"
	"railguard/internal/platform/logger"
	"railguard/internal/platform/metrics"
	platformredis "railguard/internal/platform/redis"
	"railguard/internal/rail"
	"railguard/internal/rail/cache"
	railhandler "railguard/internal/rail/handler"
	railstore "railguard/internal/rail/store"
	"railguard/internal/stakeledger"
	stakehandler "railguard/internal/stakeledger/handler"
	stakestore "railguard/internal/stakeledger/store"
	httptransport "railguard/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle: HTTP server plus
// the audit outbox worker, shut down together on SIGINT/SIGTERM.
func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	// storage: postgres when a DSN is configured, memory otherwise
	var (
		db             *sql.DB
		runner         ledger.TxRunner
		identityStore  identity.Store
		stakeStore     stakeledger.Store
		railStore      rail.Store
		auditStore     audit.Store
		auditOutbox    audit.Outbox
		healthCheckers = map[string]httptransport.HealthChecker{}
	)
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}

		runner = ledger.NewPostgresTxRunner(db)
		identityStore = identitystore.NewPostgresStore(db)
		stakeStore = stakestore.NewPostgresStore(db)
		railStore = railstore.NewPostgresStore(db)
		pgAudit := audit.NewPostgresStore(db)
		auditStore = pgAudit
		auditOutbox = pgAudit
		healthCheckers["postgres"] = dbChecker{db}
	} else {
		log.Warn("no POSTGRES_DSN configured, using in-memory ledger")
		runner = ledger.NewMemoryTxRunner()
		identityStore = identitystore.NewMemoryStore()
		stakeStore = stakestore.NewMemoryStore()
		railStore = railstore.NewMemoryStore()
		auditStore = audit.NewMemoryStore()
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	var marker rail.RevocationMarker
	if redisClient != nil {
		defer redisClient.Close()
		marker = cache.NewRevocationMarker(redisClient)
		healthCheckers["redis"] = redisClient
	}

	auditor := audit.NewStorePublisher(auditStore, log)

	identityService := identity.NewService(identityStore, auditor, log, m)
	stakeService := stakeledger.NewService(
		stakeStore,
		identityService,
		railStore,
		runner,
		stakeledger.Limits{Min: cfg.StakeLimits.Min, Max: cfg.StakeLimits.Max},
		auditor,
		log,
		m,
	)
	var anchor rail.Anchorer
	if cfg.Gateway.SignerSeed != "" {
		wallet, err := gateway.NewKeypairWallet(cfg.Gateway.SignerSeed, cfg.Gateway.NetworkPassphrase)
		if err != nil {
			log.Error("invalid gateway signer seed", "error", err)
			os.Exit(1)
		}
		horizon := &horizonclient.Client{HorizonURL: cfg.Gateway.HorizonURL}
		hg := gateway.NewHorizonGateway(horizon, cfg.Gateway.ConfirmInterval, cfg.Gateway.ConfirmTimeout)
		anchor = gateway.NewAnchor(hg, wallet, hg, log, m)
		log.Info("contract gateway enabled", "horizon", cfg.Gateway.HorizonURL, "signer", wallet.PublicKey())
	} else {
		log.Warn("no GATEWAY_SIGNER_SEED configured, chain anchoring disabled")
	}

	railService := rail.NewService(
		railStore,
		stakeService,
		runner,
		rail.Schedule{
			FeeBps:         cfg.FeeSchedule.FeeBps,
			MinFee:         cfg.FeeSchedule.MinFee,
			StakerShareBps: cfg.FeeSchedule.StakerShareBps,
		},
		marker,
		anchor,
		auditor,
		log,
		m,
	)

	tokens := jwttoken.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Validator: tokens,
		Handlers: []httptransport.Registrar{
			identityhandler.New(identityService, log),
			stakehandler.New(stakeService, log),
			railhandler.New(railService, log),
		},
		Checkers: healthCheckers,
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting railguard", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 && auditOutbox != nil {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.AllowAutoTopicCreation(),
		)
		if err != nil {
			log.Error("failed to create kafka client", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()
		if err := audit.EnsureTopic(ctx, kafkaClient, cfg.Kafka.AuditTopic); err != nil {
			log.Error("failed to ensure audit topic", "error", err)
			os.Exit(1)
		}

		worker := audit.NewWorker(auditOutbox, kafkaClient, cfg.Kafka.AuditTopic, log)
		group.Go(func() error {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("shutdown with error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

type dbChecker struct{ db *sql.DB }

func (c dbChecker) Health(ctx context.Context) error { return c.db.PingContext(ctx) }
