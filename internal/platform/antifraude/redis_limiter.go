// Pacote antifraude oferece implementações para conter tentativas repetidas (rate limit Redis e modo noop).
package antifraude

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// Escopos usados pelos serviços ao consultar o limitador.
const (
	ScopeLogin = "login"
	ScopeVote  = "vote"
)

// RedisRateLimiter limita ações por escopo em janelas fixas usando Redis.
type RedisRateLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisRateLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, scope string, parts ...string) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Configurações inválidas caem automaticamente no modo permissivo.
		return nil
	}

	key := r.buildKey(scope, parts...)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("antifraude: falha ao incrementar chave: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("antifraude: falha ao definir expiracao: %w", err)
		}
	}

	if int(count) > r.limit {
		return domain.ErrRateLimited
	}

	return nil
}

func (r *RedisRateLimiter) buildKey(scope string, parts ...string) string {
	// Hash SHA-1 evita expor IP e identificadores diretamente no Redis.
	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s:%s:%s", r.keyPrefix, scope, hex.EncodeToString(hash[:]))
}

var _ domain.RateLimiter = (*RedisRateLimiter)(nil)
