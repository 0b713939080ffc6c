package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// ElectionRepository mapeia o agregado de eleição (com candidatos) para tabelas GORM.
type ElectionRepository struct {
	db *gorm.DB
}

func NewElectionRepository(db *gorm.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

type electionModel struct {
	ID          string           `gorm:"column:id;primaryKey;size:26"`
	Title       string           `gorm:"column:title;not null"`
	Description string           `gorm:"column:description"`
	StartDate   time.Time        `gorm:"column:start_date"`
	EndDate     time.Time        `gorm:"column:end_date"`
	Status      string           `gorm:"column:status;size:16"`
	CreatedBy   string           `gorm:"column:created_by;size:26"`
	CreatedAt   time.Time        `gorm:"column:created_at"`
	UpdatedAt   time.Time        `gorm:"column:updated_at"`
	Candidates  []candidateModel `gorm:"foreignKey:ElectionID;references:ID"`
}

func (electionModel) TableName() string {
	return "elections"
}

// candidateModel usa chave composta: o ID do candidato só é único dentro da eleição.
type candidateModel struct {
	ElectionID string `gorm:"column:election_id;primaryKey;size:26"`
	ID         string `gorm:"column:id;primaryKey;size:26"`
	Name       string `gorm:"column:name;not null"`
	Party      string `gorm:"column:party;not null"`
	Bio        string `gorm:"column:bio"`
	Position   int    `gorm:"column:position"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

func (m electionModel) toDomain() domain.Election {
	e := domain.Election{
		ID:          domain.ElectionID(m.ID),
		Title:       m.Title,
		Description: m.Description,
		StartDate:   m.StartDate.UTC(),
		EndDate:     m.EndDate.UTC(),
		Status:      domain.ElectionStatus(m.Status),
		CreatedBy:   domain.UserID(m.CreatedBy),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
		Candidates:  make([]domain.Candidate, len(m.Candidates)),
	}
	for i, c := range m.Candidates {
		e.Candidates[i] = domain.Candidate{
			ID:    domain.CandidateID(c.ID),
			Name:  c.Name,
			Party: c.Party,
			Bio:   c.Bio,
		}
	}
	return e
}

func fromDomainElection(e domain.Election) electionModel {
	return electionModel{
		ID:          string(e.ID),
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate.UTC(),
		EndDate:     e.EndDate.UTC(),
		Status:      string(e.Status),
		CreatedBy:   string(e.CreatedBy),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func candidateModels(id domain.ElectionID, candidates []domain.Candidate) []candidateModel {
	models := make([]candidateModel, len(candidates))
	for i, c := range candidates {
		models[i] = candidateModel{
			ElectionID: string(id),
			ID:         string(c.ID),
			Name:       c.Name,
			Party:      c.Party,
			Bio:        c.Bio,
			Position:   i,
		}
	}
	return models
}

func orderedCandidates(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *ElectionRepository) Create(ctx context.Context, e domain.Election) error {
	model := fromDomainElection(e)
	candidates := candidateModels(e.ID, e.Candidates)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&model).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		return tx.Create(&candidates).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("gorm eleicao: inserir: %w", err)
	}
	return nil
}

func (r *ElectionRepository) Update(ctx context.Context, e domain.Election) error {
	model := fromDomainElection(e)
	candidates := candidateModels(e.ID, e.Candidates)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&electionModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]any{
				"title":       model.Title,
				"description": model.Description,
				"start_date":  model.StartDate,
				"end_date":    model.EndDate,
				"status":      model.Status,
				"updated_at":  model.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		// Lista de candidatos é substituída por inteiro.
		if err := tx.Where("election_id = ?", model.ID).Delete(&candidateModel{}).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		return tx.Create(&candidates).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if isDuplicate(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("gorm eleicao: atualizar: %w", err)
	}
	return nil
}

func (r *ElectionRepository) FindByID(ctx context.Context, id domain.ElectionID) (domain.Election, error) {
	var model electionModel
	if err := r.db.WithContext(ctx).
		Preload("Candidates", orderedCandidates).
		First(&model, "id = ?", string(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Election{}, domain.ErrNotFound
		}
		return domain.Election{}, fmt.Errorf("gorm eleicao: buscar id: %w", err)
	}
	return model.toDomain(), nil
}

// List devolve as eleições da mais recente para a mais antiga pela data de início.
func (r *ElectionRepository) List(ctx context.Context) ([]domain.Election, error) {
	var models []electionModel
	if err := r.db.WithContext(ctx).
		Preload("Candidates", orderedCandidates).
		Order("start_date DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm eleicao: listar: %w", err)
	}

	result := make([]domain.Election, len(models))
	for i, model := range models {
		result[i] = model.toDomain()
	}
	return result, nil
}

// DeleteCascade remove votos, candidatos e a eleição na mesma transação.
func (r *ElectionRepository) DeleteCascade(ctx context.Context, id domain.ElectionID) (domain.DeleteReport, error) {
	var report domain.DeleteReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("election_id = ?", string(id)).Delete(&voteModel{})
		if res.Error != nil {
			return res.Error
		}
		report.VotesDeleted = res.RowsAffected

		if err := tx.Where("election_id = ?", string(id)).Delete(&candidateModel{}).Error; err != nil {
			return err
		}

		res = tx.Where("id = ?", string(id)).Delete(&electionModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		report.ElectionsDeleted = res.RowsAffected
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DeleteReport{}, err
		}
		return domain.DeleteReport{}, fmt.Errorf("gorm eleicao: remover: %w", err)
	}
	return report, nil
}

var _ domain.ElectionRepository = (*ElectionRepository)(nil)
