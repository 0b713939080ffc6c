// Executável principal da API: carrega a configuração, inicializa dependências e sobe o servidor HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marcelojr/urna-digital/internal/app/accounts"
	"github.com/marcelojr/urna-digital/internal/app/httpapi"
	"github.com/marcelojr/urna-digital/internal/app/voting"
	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/antifraude"
	"github.com/marcelojr/urna-digital/internal/platform/clock"
	"github.com/marcelojr/urna-digital/internal/platform/config"
	"github.com/marcelojr/urna-digital/internal/platform/health"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
	"github.com/marcelojr/urna-digital/internal/platform/logger"
	"github.com/marcelojr/urna-digital/internal/platform/migrations"
	"github.com/marcelojr/urna-digital/internal/platform/security"
	postgresstorage "github.com/marcelojr/urna-digital/internal/platform/storage/postgres"
	redisstorage "github.com/marcelojr/urna-digital/internal/platform/storage/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	// Mantemos a conexão compartilhada em todo o ciclo para reaproveitar pool e checar readiness.
	db, err := postgresstorage.Open(ctx, cfg.PostgresDSN(), postgresstorage.Pool{MaxOpenConns: cfg.PostgresMaxOpenConns})
	if err != nil {
		logger.Fatal("falha ao conectar no postgres", "err", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("falha ao resgatar sql.DB", "err", err)
	}
	defer sqlDB.Close()

	if cfg.AutoMigrate {
		// Rodamos migrations automáticas apenas se habilitado para evitar surpresas em produção.
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Redis guarda contadores, fila de eventos, revogações e o rate limit.
	redisClient, err := redisstorage.NewClient(ctx, redisstorage.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		logger.Fatal("falha ao conectar no redis", "err", err)
	}
	defer redisClient.Close()

	elections := postgresstorage.NewElectionRepository(db)
	votes := postgresstorage.NewVoteRepository(db)
	users := postgresstorage.NewUserRepository(db)
	turnout := redisstorage.NewCounter(redisClient, cfg.TurnoutKeyPrefix)
	events := redisstorage.NewEventQueue(redisClient, cfg.EventsQueueKey)
	revocations := redisstorage.NewRevocationStore(redisClient, cfg.RevocationKeyPrefix)
	clockSystem := clock.NewSystemClock()
	idGen := ids.NewGenerator()

	var limiter domain.RateLimiter = antifraude.NewNoop()
	if cfg.RateLimitEnabled {
		limiter = antifraude.NewRedisRateLimiter(redisClient, cfg.RateLimitMaxActions, cfg.RateLimitWindow(), cfg.RateLimitKeyPrefix)
	}

	tokens := security.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL)

	votingSvc := voting.NewService(elections, votes, turnout, events, limiter, clockSystem, idGen)
	accountsSvc := accounts.NewService(
		users,
		security.NewHasher(cfg.BcryptCost),
		tokens,
		revocations,
		limiter,
		clockSystem,
		idGen,
		cfg.Production(),
	)

	api := httpapi.New(httpapi.Options{
		Voting:      votingSvc,
		Accounts:    accountsSvc,
		Tokens:      tokens,
		Revocations: revocations,
		AuditSalt:   cfg.AuditSalt,
		Production:  cfg.Production(),
		Logger:      logger.L(),
	})

	mux := http.NewServeMux()
	checker := health.NewChecker(sqlDB, redisClient)

	// HTTP expõe API, health check e métricas que o Prometheus coleta.
	api.Register(mux)
	mux.HandleFunc("GET /healthz", health.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	mux.Handle("GET /metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           api.Wrap(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("erro ao encerrar servidor", "err", err)
		}
	}()

	logger.Info("api ouvindo", "addr", cfg.HTTPAddress, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("erro no servidor", "err", err)
	}
	logger.Info("api finalizada")
}
