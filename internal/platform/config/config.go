// Pacote config centraliza o carregamento das variáveis de ambiente usadas pelos binários.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const EnvProduction = "production"

// Config agrega todos os parâmetros necessários para API, worker e seed.
type Config struct {
	Env         string
	LogLevel    string
	HTTPAddress string

	PostgresHost         string
	PostgresPort         string
	PostgresUser         string
	PostgresPassword     string
	PostgresDB           string
	PostgresSSLMode      string
	PostgresMaxOpenConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPoolSize int

	JWTSecret  string
	JWTIssuer  string
	JWTTTL     time.Duration
	BcryptCost int
	AuditSalt  string

	RateLimitEnabled       bool
	RateLimitMaxActions    int
	RateLimitWindowSeconds int
	RateLimitKeyPrefix     string

	RevocationKeyPrefix string
	TurnoutKeyPrefix    string
	EventsQueueKey      string

	AutoMigrate bool

	WorkerMetricsAddress string
	ReconcileInterval    time.Duration

	Admin AdminSeed
}

// AdminSeed descreve a conta administrativa criada pelo cmd/seed.
type AdminSeed struct {
	FullName string
	Email    string
	VoterID  string
	Password string
	Age      int
}

// Load lê o .env quando existir; variáveis já presentes no ambiente têm precedência.
func Load() (Config, error) {
	_ = godotenv.Load()

	// Defaults priorizam execução local; variáveis permitem sobrescrever em Docker/K8s.
	cfg := Config{
		Env:                    getEnv("APP_ENV", "development"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		HTTPAddress:            getEnv("HTTP_ADDRESS", ":8080"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:           getEnv("POSTGRES_USER", "urna"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "urna"),
		PostgresDB:             getEnv("POSTGRES_DB", "urna_digital"),
		PostgresSSLMode:        getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresMaxOpenConns:   getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 25),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisPoolSize:          getEnvAsInt("REDIS_POOL_SIZE", 50),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		JWTIssuer:              getEnv("JWT_ISSUER", "urna-digital"),
		JWTTTL:                 getEnvAsDuration("JWT_TTL", 24*time.Hour),
		BcryptCost:             getEnvAsInt("BCRYPT_COST", 10),
		AuditSalt:              os.Getenv("AUDIT_SALT"),
		RateLimitEnabled:       getEnvAsBool("ANTIFRAUDE_RATE_LIMIT_ENABLED", true),
		RateLimitMaxActions:    getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_MAX", 10),
		RateLimitWindowSeconds: getEnvAsInt("ANTIFRAUDE_RATE_LIMIT_WINDOW", 60),
		RateLimitKeyPrefix:     getEnv("ANTIFRAUDE_RATE_LIMIT_PREFIX", "ratelimit"),
		RevocationKeyPrefix:    getEnv("REVOCATION_PREFIX", "revoked"),
		TurnoutKeyPrefix:       getEnv("TURNOUT_COUNTER_PREFIX", "turnout"),
		EventsQueueKey:         getEnv("EVENTS_QUEUE_KEY", "fila:eleicoes"),
		AutoMigrate:            getEnvAsBool("DB_AUTO_MIGRATE", true),
		WorkerMetricsAddress:   getEnv("WORKER_METRICS_ADDRESS", ":9090"),
		ReconcileInterval:      getEnvAsDuration("RECONCILE_INTERVAL", 10*time.Minute),
		Admin: AdminSeed{
			FullName: getEnv("ADMIN_FULL_NAME", "Administrador"),
			Email:    os.Getenv("ADMIN_EMAIL"),
			VoterID:  os.Getenv("ADMIN_VOTER_ID"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Age:      getEnvAsInt("ADMIN_AGE", 30),
		},
	}

	dbStr := getEnv("REDIS_DB", "0")
	dbInt, err := strconv.Atoi(dbStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: REDIS_DB invalido: %w", err)
	}
	cfg.RedisDB = dbInt

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET obrigatorio")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return Config{}, fmt.Errorf("config: BCRYPT_COST deve estar entre 4 e 31, veio %d", cfg.BcryptCost)
	}

	return cfg, nil
}

func (c Config) Production() bool {
	return c.Env == EnvProduction
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func (c Config) PostgresDSN() string {
	// Mantemos o formato DSN compatível com GORM e ferramentas de migração.
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
		c.PostgresSSLMode,
	)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	switch value {
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return true
	}
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
