package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// RevocationStore marca usuários desativados para que tokens já emitidos sejam recusados.
type RevocationStore struct {
	client *redis.Client
	prefix string
}

func NewRevocationStore(client *redis.Client, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = "revoked"
	}
	return &RevocationStore{client: client, prefix: prefix}
}

// Revoke guarda a marca pelo tempo de vida máximo de um token.
func (s *RevocationStore) Revoke(ctx context.Context, id domain.UserID, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(id), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revogacao: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, id domain.UserID) (bool, error) {
	err := s.client.Get(ctx, s.key(id)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis revogacao: %w", err)
	}
	return true, nil
}

func (s *RevocationStore) key(id domain.UserID) string {
	return s.prefix + ":" + string(id)
}

var _ domain.RevocationStore = (*RevocationStore)(nil)
