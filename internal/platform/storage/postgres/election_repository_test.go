package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/urna-digital/internal/domain"
	"github.com/marcelojr/urna-digital/internal/platform/ids"
)

func TestElectionRepository_FindByID_QuandoExiste_DeveRetornarEleicaoComCandidatosEmOrdem(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	e := newElection(gen, time.Now().Add(time.Hour), "Zeca", "Ana", "Mara")

	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)

	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Title, got.Title)
	assert.True(t, e.StartDate.Equal(got.StartDate))
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, "Zeca", got.Candidates[0].Name)
	assert.Equal(t, "Ana", got.Candidates[1].Name)
	assert.Equal(t, "Mara", got.Candidates[2].Name)
	assert.Equal(t, e.Candidates[1].ID, got.Candidates[1].ID)
}

func TestElectionRepository_FindByID_QuandoNaoExiste_DeveRetornarErrNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	_, err := repo.FindByID(context.Background(), "01HXXXXXXXXXXXXXXXXXXXXXXX")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElectionRepository_List_DeveOrdenarPorInicioDecrescente(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	antiga := newElection(gen, base, "A", "B")
	recente := newElection(gen, base.Add(72*time.Hour), "C", "D")
	meio := newElection(gen, base.Add(24*time.Hour), "E", "F")

	for _, e := range []domain.Election{antiga, recente, meio} {
		require.NoError(t, repo.Create(ctx, e))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, recente.ID, list[0].ID)
	assert.Equal(t, meio.ID, list[1].ID)
	assert.Equal(t, antiga.ID, list[2].ID)
	assert.Len(t, list[0].Candidates, 2)
}

func TestElectionRepository_Update_DeveSubstituirCandidatos(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	e := newElection(gen, time.Now().Add(time.Hour), "Ana", "Bia")
	require.NoError(t, repo.Create(ctx, e))

	e.Title = "Novo titulo"
	e.Candidates = []domain.Candidate{
		e.Candidates[1],
		{ID: domain.CandidateID(gen.New()), Name: "Caio", Party: "PX", Bio: "bio"},
		{ID: domain.CandidateID(gen.New()), Name: "Duda", Party: "PY", Bio: "bio"},
	}
	e.UpdatedAt = time.Now().UTC()

	require.NoError(t, repo.Update(ctx, e))

	got, err := repo.FindByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Novo titulo", got.Title)
	require.Len(t, got.Candidates, 3)
	assert.Equal(t, "Bia", got.Candidates[0].Name)
	assert.Equal(t, "Duda", got.Candidates[2].Name)
}

func TestElectionRepository_Update_QuandoNaoExiste_DeveRetornarErrNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	e := newElection(ids.NewGenerator(), time.Now(), "Ana", "Bia")
	err := repo.Update(context.Background(), e)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestElectionRepository_DeleteCascade_DeveRemoverVotosECandidatos(t *testing.T) {
	db := setupPostgres(t)
	elections := NewElectionRepository(db)
	votes := NewVoteRepository(db)

	ctx := context.Background()
	gen := ids.NewGenerator()
	e := newElection(gen, time.Now().Add(-time.Hour), "Ana", "Bia")
	outra := newElection(gen, time.Now().Add(-time.Hour), "Caio", "Duda")
	require.NoError(t, elections.Create(ctx, e))
	require.NoError(t, elections.Create(ctx, outra))

	for i := 0; i < 3; i++ {
		require.NoError(t, votes.Create(ctx, domain.Vote{
			ID:          domain.VoteID(gen.New()),
			ElectionID:  e.ID,
			UserID:      domain.UserID(gen.New()),
			CandidateID: e.Candidates[0].ID,
			CastAt:      time.Now(),
		}))
	}
	require.NoError(t, votes.Create(ctx, domain.Vote{
		ID:          domain.VoteID(gen.New()),
		ElectionID:  outra.ID,
		UserID:      domain.UserID(gen.New()),
		CandidateID: outra.Candidates[0].ID,
		CastAt:      time.Now(),
	}))

	report, err := elections.DeleteCascade(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.ElectionsDeleted)
	assert.Equal(t, int64(3), report.VotesDeleted)

	_, err = elections.FindByID(ctx, e.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var candidatos int64
	require.NoError(t, db.Model(&candidateModel{}).Where("election_id = ?", string(e.ID)).Count(&candidatos).Error)
	assert.Zero(t, candidatos)

	restantes, err := votes.CountByElection(ctx, outra.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), restantes)
}

func TestElectionRepository_DeleteCascade_QuandoNaoExiste_DeveRetornarErrNotFound(t *testing.T) {
	db := setupPostgres(t)
	repo := NewElectionRepository(db)

	_, err := repo.DeleteCascade(context.Background(), "01HXXXXXXXXXXXXXXXXXXXXXXX")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
