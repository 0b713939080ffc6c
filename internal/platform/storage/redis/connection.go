package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPoolSize    = 50
	defaultDialTimeout = 5 * time.Second
)

// Options espelha o subconjunto de redis.Options que a configuração expõe.
type Options struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewClient abre o pool e só devolve o cliente depois de um PING bem-sucedido.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		PoolSize:    opts.PoolSize,
		PoolTimeout: defaultDialTimeout,
		DialTimeout: defaultDialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping em %s falhou: %w", opts.Addr, err)
	}

	return client, nil
}
