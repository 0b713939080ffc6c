package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// Counter mantém contadores de comparecimento por eleição usando chaves com prefixo.
type Counter struct {
	client *redis.Client
	prefix string
}

func NewCounter(client *redis.Client, prefix string) *Counter {
	return &Counter{
		client: client,
		prefix: prefix,
	}
}

func (c *Counter) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	return c.client.IncrBy(ctx, c.key(key), delta).Result()
}

// Get devolve zero quando a chave ainda não existe.
func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, c.key(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return val, err
}

// GetMany lê vários contadores num único MGET; chaves ausentes ficam fora do mapa.
func (c *Counter) GetMany(ctx context.Context, keys []string) (map[string]int64, error) {
	if len(keys) == 0 {
		return map[string]int64{}, nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}

	values, err := c.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(keys))
	for i, raw := range values {
		switch v := raw.(type) {
		case nil:
			continue
		case string:
			num, convErr := strconv.ParseInt(v, 10, 64)
			if convErr != nil {
				return nil, fmt.Errorf("redis counter: valor invalido para %s: %w", keys[i], convErr)
			}
			out[keys[i]] = num
		case int64:
			out[keys[i]] = v
		default:
			return nil, fmt.Errorf("redis counter: tipo inesperado %T", raw)
		}
	}

	return out, nil
}

func (c *Counter) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *Counter) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

var _ domain.Counter = (*Counter)(nil)
