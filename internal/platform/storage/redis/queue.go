// Pacote redis implementa fila de eventos, contadores e revogação de sessões sobre Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// EventQueue usa listas Redis para publicar e consumir eventos de eleição.
type EventQueue struct {
	client *redis.Client
	key    string
}

func NewEventQueue(client *redis.Client, key string) *EventQueue {
	return &EventQueue{
		client: client,
		key:    key,
	}
}

func (q *EventQueue) Publish(ctx context.Context, ev domain.ElectionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis fila: falha serializando evento: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("redis fila: falha ao enfileirar evento: %w", err)
	}
	return nil
}

func (q *EventQueue) Consume(ctx context.Context, handler func(context.Context, domain.ElectionEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// BRPOP com timeout curto para respeitar o contexto.
		res, err := q.client.BRPop(ctx, 5*time.Second, q.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("redis fila: falha ao consumir evento: %w", err)
		}

		if len(res) != 2 {
			continue
		}

		var ev domain.ElectionEvent
		if err := json.Unmarshal([]byte(res[1]), &ev); err != nil {
			return fmt.Errorf("redis fila: payload invalido: %w", err)
		}

		if err := handler(ctx, ev); err != nil {
			return err
		}
	}
}

var _ domain.EventQueue = (*EventQueue)(nil)
