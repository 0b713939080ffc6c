package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// VoteRepository guarda as cédulas; o índice único (eleição, eleitor) é a garantia final contra voto duplo.
type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

type voteModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:26"`
	ElectionID  string    `gorm:"column:election_id;size:26;not null;uniqueIndex:idx_votes_election_user,priority:1"`
	UserID      string    `gorm:"column:user_id;size:26;not null;uniqueIndex:idx_votes_election_user,priority:2"`
	CandidateID string    `gorm:"column:candidate_id;size:26;not null"`
	AuditHash   string    `gorm:"column:audit_hash;size:64"`
	CastAt      time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func (m voteModel) toDomain() domain.Vote {
	return domain.Vote{
		ID:          domain.VoteID(m.ID),
		ElectionID:  domain.ElectionID(m.ElectionID),
		UserID:      domain.UserID(m.UserID),
		CandidateID: domain.CandidateID(m.CandidateID),
		AuditHash:   m.AuditHash,
		CastAt:      m.CastAt.UTC(),
	}
}

func fromDomainVote(v domain.Vote) voteModel {
	return voteModel{
		ID:          string(v.ID),
		ElectionID:  string(v.ElectionID),
		UserID:      string(v.UserID),
		CandidateID: string(v.CandidateID),
		AuditHash:   v.AuditHash,
		CastAt:      v.CastAt.UTC(),
	}
}

func (r *VoteRepository) Create(ctx context.Context, v domain.Vote) error {
	model := fromDomainVote(v)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrAlreadyVoted
		}
		return fmt.Errorf("gorm votos: inserir: %w", err)
	}
	return nil
}

func (r *VoteRepository) FindByElectionAndUser(ctx context.Context, electionID domain.ElectionID, userID domain.UserID) (domain.Vote, error) {
	var model voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ? AND user_id = ?", string(electionID), string(userID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, fmt.Errorf("gorm votos: buscar eleitor: %w", err)
	}
	return model.toDomain(), nil
}

func (r *VoteRepository) ListByElection(ctx context.Context, electionID domain.ElectionID) ([]domain.Vote, error) {
	var models []voteModel
	if err := r.db.WithContext(ctx).
		Where("election_id = ?", string(electionID)).
		Order("cast_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm votos: listar: %w", err)
	}

	votes := make([]domain.Vote, len(models))
	for i, m := range models {
		votes[i] = m.toDomain()
	}
	return votes, nil
}

func (r *VoteRepository) CountByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Where("election_id = ?", string(electionID)).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("gorm votos: total eleicao: %w", err)
	}
	return total, nil
}

func (r *VoteRepository) DeleteByElection(ctx context.Context, electionID domain.ElectionID) (int64, error) {
	res := r.db.WithContext(ctx).Where("election_id = ?", string(electionID)).Delete(&voteModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm votos: remover eleicao: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteOrphans apaga votos cuja eleição não existe mais.
func (r *VoteRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	db := r.db.WithContext(ctx)
	existing := db.Model(&electionModel{}).Select("id")
	res := db.Where("election_id NOT IN (?)", existing).Delete(&voteModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("gorm votos: remover orfaos: %w", res.Error)
	}
	return res.RowsAffected, nil
}

var _ domain.VoteRepository = (*VoteRepository)(nil)
