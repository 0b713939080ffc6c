package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urna_vote_requests_total",
		Help: "Total de requisicoes de voto recebidas por resultado",
	}, []string{"status"})

	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urna_login_attempts_total",
		Help: "Total de tentativas de login por resultado",
	}, []string{"outcome"})

	electionOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "urna_election_operations_total",
		Help: "Operacoes administrativas sobre eleicoes",
	}, []string{"operation", "outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "urna_http_request_duration_seconds",
		Help:    "Latencia das requisicoes HTTP por rota e status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	orphanVotesRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "urna_orphan_votes_removed_total",
		Help: "Votos orfaos removidos pelo worker de reconciliacao",
	})

	reconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "urna_reconcile_duration_seconds",
		Help:    "Tempo de cada varredura de reconciliacao",
		Buckets: prometheus.DefBuckets,
	})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func ObserveLoginAttempt(outcome string) {
	loginAttemptsTotal.WithLabelValues(outcome).Inc()
}

func ObserveElectionOperation(operation, outcome string) {
	electionOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func AddOrphanVotesRemoved(n int64) {
	if n > 0 {
		orphanVotesRemovedTotal.Add(float64(n))
	}
}

func ObserveReconcileDuration(seconds float64) {
	reconcileDuration.Observe(seconds)
}
