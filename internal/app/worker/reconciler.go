// Pacote worker contém a reconciliação assíncrona que remove votos de eleições que não existem mais.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/logger"
	"github.com/marcelojr/urna-digital/internal/platform/metrics"
)

type ElectionFinder interface {
	FindByID(ctx context.Context, id domain.ElectionID) (domain.Election, error)
}

type VoteCleaner interface {
	DeleteByElection(ctx context.Context, electionID domain.ElectionID) (int64, error)
	DeleteOrphans(ctx context.Context) (int64, error)
}

// Reconciler é idempotente: rodar duas vezes sobre o mesmo estado não remove nada a mais.
type Reconciler struct {
	elections ElectionFinder
	votes     VoteCleaner
	events    domain.EventQueue
}

func NewReconciler(elections ElectionFinder, votes VoteCleaner, events domain.EventQueue) *Reconciler {
	return &Reconciler{
		elections: elections,
		votes:     votes,
		events:    events,
	}
}

// HandleEvent só apaga votos se a eleição do evento realmente não resolve mais.
func (r *Reconciler) HandleEvent(ctx context.Context, ev domain.ElectionEvent) error {
	if ev.Type != domain.EventElectionDeleted {
		logger.Warn("worker: evento ignorado", "type", ev.Type, "election_id", ev.ElectionID)
		return nil
	}

	_, err := r.elections.FindByID(ctx, ev.ElectionID)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("worker: consultar eleicao %s: %w", ev.ElectionID, err)
	}

	removed, err := r.votes.DeleteByElection(ctx, ev.ElectionID)
	if err != nil {
		return fmt.Errorf("worker: remover votos da eleicao %s: %w", ev.ElectionID, err)
	}
	metrics.AddOrphanVotesRemoved(removed)
	if removed > 0 {
		logger.Info("worker: votos orfaos removidos", "election_id", ev.ElectionID, "removed", removed)
	}
	return nil
}

// Sweep varre votos cuja eleição não existe mais.
func (r *Reconciler) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()
	removed, err := r.votes.DeleteOrphans(ctx)
	metrics.ObserveReconcileDuration(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("worker: varredura de orfaos: %w", err)
	}
	metrics.AddOrphanVotesRemoved(removed)
	return removed, nil
}

// Run faz uma varredura inicial, repete a cada intervalo e consome a fila até o contexto ser cancelado.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) error {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.sweepLoop(ctx, interval)
	}()

	var err error
	if r.events != nil {
		err = r.events.Consume(ctx, func(ctx context.Context, ev domain.ElectionEvent) error {
			// Falha num evento não derruba o consumo; a varredura periódica cobre o que sobrar.
			if err := r.HandleEvent(ctx, ev); err != nil {
				logger.Error("worker: erro ao processar evento", "election_id", ev.ElectionID, "err", err)
			}
			return nil
		})
	} else {
		<-ctx.Done()
		err = ctx.Err()
	}

	wg.Wait()
	return err
}

func (r *Reconciler) sweepLoop(ctx context.Context, interval time.Duration) {
	r.sweepOnce(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepOnce(ctx)
		}
	}
}

func (r *Reconciler) sweepOnce(ctx context.Context) {
	removed, err := r.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("worker: falha na varredura", "err", err)
		}
		return
	}
	if removed > 0 {
		logger.Info("worker: varredura removeu votos orfaos", "removed", removed)
	}
}
