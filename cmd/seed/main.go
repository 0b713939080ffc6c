// Seed cria a conta administrativa inicial; pode ser executado várias vezes sem duplicar.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/marcelojr/urna-digital/internal/app/accounts"
	"github.com/marcelojr/urna-digital/internal/platform/config"
	"github.com/marcelojr/urna-digital/internal/platform/logger"
	"github.com/marcelojr/urna-digital/internal/platform/migrations"
	"github.com/marcelojr/urna-digital/internal/platform/security"
	postgresstorage "github.com/marcelojr/urna-digital/internal/platform/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("configuracao invalida", "err", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.Admin.Email == "" || cfg.Admin.VoterID == "" || cfg.Admin.Password == "" {
		logger.Fatal("ADMIN_EMAIL, ADMIN_VOTER_ID e ADMIN_PASSWORD sao obrigatorios")
	}

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
		if err := migrations.Run(db); err != nil {
			logger.Fatal("falha na migracao automatica", "err", err)
		}
	}

	// Sem Redis: o seed não emite tokens nem consulta o rate limit.
	svc := accounts.NewService(
		postgresstorage.NewUserRepository(db),
		security.NewHasher(cfg.BcryptCost),
		security.NewTokenManager([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.JWTTTL),
		nil,
		nil,
		nil,
		nil,
		cfg.Production(),
	)

	admin, created, err := svc.EnsureAdmin(ctx, accounts.AdminInput{
		FullName: cfg.Admin.FullName,
		Email:    cfg.Admin.Email,
		VoterID:  cfg.Admin.VoterID,
		Password: cfg.Admin.Password,
		Age:      cfg.Admin.Age,
	})
	if err != nil {
		logger.Fatal("falha ao criar administrador", "err", err)
	}

	if !created {
		logger.Info("administrador ja existente, nada a fazer", "user_id", admin.ID, "role", admin.Role)
		return
	}
	logger.Info("administrador criado", "user_id", admin.ID, "voter_id", admin.VoterID)
}
