package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

func TestEventQueue_PublishEConsume_QuandoValido_DeveEntregarEvento(t *testing.T) {
	client, _ := setupRedis(t)
	queue := NewEventQueue(client, "eventos:queue")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	gen := ids.NewGenerator()
	ev := domain.ElectionEvent{
		Type:         domain.EventElectionDeleted,
		ElectionID:   domain.ElectionID(gen.New()),
		VotesDeleted: 7,
		OccurredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	var recebido *domain.ElectionEvent
	var mu sync.Mutex
	var wg sync.WaitGroup

	stop := errors.New("fim")
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := queue.Consume(ctx, func(ctx context.Context, e domain.ElectionEvent) error {
			mu.Lock()
			recebido = &e
			mu.Unlock()
			return stop
		})
		if !errors.Is(err, stop) {
			t.Errorf("erro inesperado no consumo: %v", err)
		}
	}()

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, queue.Publish(ctx, ev))

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, recebido)
	assert.Equal(t, ev.Type, recebido.Type)
	assert.Equal(t, ev.ElectionID, recebido.ElectionID)
	assert.Equal(t, ev.VotesDeleted, recebido.VotesDeleted)
	assert.True(t, ev.OccurredAt.Equal(recebido.OccurredAt))
}

func TestEventQueue_Publish_QuandoSemConsumidor_DeveAcumularNaLista(t *testing.T) {
	client, mr := setupRedis(t)
	queue := NewEventQueue(client, "eventos:queue")

	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, domain.ElectionEvent{Type: domain.EventElectionDeleted, ElectionID: "a"}))
	require.NoError(t, queue.Publish(ctx, domain.ElectionEvent{Type: domain.EventElectionDeleted, ElectionID: "b"}))

	itens, err := mr.List("eventos:queue")
	require.NoError(t, err)
	assert.Len(t, itens, 2)
}

func TestEventQueue_Consume_QuandoPayloadInvalido_DeveFalhar(t *testing.T) {
	client, mr := setupRedis(t)
	queue := NewEventQueue(client, "eventos:queue")

	_, err := mr.Lpush("eventos:queue", "{nao-e-json")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err = queue.Consume(ctx, func(context.Context, domain.ElectionEvent) error { return nil })

	assert.ErrorContains(t, err, "payload invalido")
}

func TestEventQueue_Consume_QuandoContextoCancelado_DeveParar(t *testing.T) {
	client, _ := setupRedis(t)
	queue := NewEventQueue(client, "eventos:queue")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chamadas := 0
	err := queue.Consume(ctx, func(context.Context, domain.ElectionEvent) error {
		chamadas++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, chamadas)
}
