// Pacote health expõe as sondas de liveness e readiness usadas pelos orquestradores.
package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// Report descreve o estado de cada dependência consultada no readiness.
type Report struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

type Checker struct {
	db    *sql.DB
	redis *redis.Client
}

func NewChecker(db *sql.DB, redis *redis.Client) *Checker {
	return &Checker{db: db, redis: redis}
}

// Check consulta banco e Redis; dependências nulas ficam fora do relatório.
func (c *Checker) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	report := Report{Status: statusOK, Components: map[string]string{}}

	if c.db != nil {
		report.Components["database"] = statusOK
		if err := c.db.PingContext(ctx); err != nil {
			report.Components["database"] = statusUnavailable
			report.Status = statusUnavailable
		}
	}

	if c.redis != nil {
		report.Components["redis"] = statusOK
		if err := c.redis.Ping(ctx).Err(); err != nil {
			report.Components["redis"] = statusUnavailable
			report.Status = statusUnavailable
		}
	}

	return report
}

func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		code := http.StatusOK
		if report.Status != statusOK {
			code = http.StatusServiceUnavailable
		}
		writeReport(w, code, report)
	}
}

// LiveHandler só indica que o processo responde.
func LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeReport(w, http.StatusOK, Report{Status: statusOK})
	}
}

func writeReport(w http.ResponseWriter, code int, report Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}
