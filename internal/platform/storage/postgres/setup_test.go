package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

func setupPostgres(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig(logger.Silent))
	require.NoError(t, err)

	// Uma única conexão mantém o mesmo banco em memória entre goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...))

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func newElection(gen *ids.Generator, start time.Time, names ...string) domain.Election {
	e := domain.Election{
		ID:          domain.ElectionID(gen.New()),
		Title:       "Eleicao Municipal",
		Description: "Escolha do conselho",
		StartDate:   start.UTC(),
		EndDate:     start.Add(24 * time.Hour).UTC(),
		Status:      domain.StatusUpcoming,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	for _, n := range names {
		e.Candidates = append(e.Candidates, domain.Candidate{
			ID:    domain.CandidateID(gen.New()),
			Name:  n,
			Party: "Partido " + n,
			Bio:   "Bio de " + n,
		})
	}
	return e
}

func TestPool_WithDefaults(t *testing.T) {
	p := Pool{}.withDefaults()
	require.Equal(t, 25, p.MaxOpenConns)
	require.Equal(t, 25, p.MaxIdleConns)
	require.Equal(t, time.Hour, p.ConnMaxLifetime)

	p = Pool{MaxOpenConns: 4, MaxIdleConns: 10}.withDefaults()
	require.Equal(t, 4, p.MaxIdleConns)
}
