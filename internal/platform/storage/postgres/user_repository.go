package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/marcelojr/urna-digital/internal/domain"
)

// UserRepository persiste eleitores e administradores.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey;size:26"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"column:email;size:255;not null;uniqueIndex"`
	VoterID      string    `gorm:"column:voter_id;size:64;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Age          int       `gorm:"column:age;index"`
	Phone        string    `gorm:"column:phone;size:20"`
	Role         string    `gorm:"column:role;size:16;index"`
	Verified     bool      `gorm:"column:is_verified"`
	Active       bool      `gorm:"column:is_active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toDomain() domain.User {
	return domain.User{
		ID:           domain.UserID(m.ID),
		FullName:     m.FullName,
		Email:        m.Email,
		VoterID:      m.VoterID,
		PasswordHash: m.PasswordHash,
		Age:          m.Age,
		Phone:        m.Phone,
		Role:         domain.Role(m.Role),
		Verified:     m.Verified,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

func fromDomainUser(u domain.User) userModel {
	return userModel{
		ID:           string(u.ID),
		FullName:     u.FullName,
		Email:        normalizeEmail(u.Email),
		VoterID:      u.VoterID,
		PasswordHash: u.PasswordHash,
		Age:          u.Age,
		Phone:        u.Phone,
		Role:         string(u.Role),
		Verified:     u.Verified,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, u domain.User) error {
	model := fromDomainUser(u)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("gorm usuarios: inserir: %w", err)
	}
	return nil
}

// Update grava apenas os campos editáveis do perfil.
func (r *UserRepository) Update(ctx context.Context, u domain.User) error {
	model := fromDomainUser(u)
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"full_name":  model.FullName,
			"email":      model.Email,
			"age":        model.Age,
			"phone":      model.Phone,
			"updated_at": model.UpdatedAt,
		})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return domain.ErrConflict
		}
		return fmt.Errorf("gorm usuarios: atualizar: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.first(ctx, "buscar id", "id = ?", string(id))
}

func (r *UserRepository) FindByVoterID(ctx context.Context, voterID string) (domain.User, error) {
	return r.first(ctx, "buscar titulo", "voter_id = ?", strings.TrimSpace(voterID))
}

func (r *UserRepository) FindByEmailOrVoterID(ctx context.Context, email, voterID string) (domain.User, error) {
	return r.first(ctx, "buscar email ou titulo", "email = ? OR voter_id = ?", normalizeEmail(email), strings.TrimSpace(voterID))
}

func (r *UserRepository) first(ctx context.Context, op string, query string, args ...any) (domain.User, error) {
	var model userModel
	if err := r.db.WithContext(ctx).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("gorm usuarios: %s: %w", op, err)
	}
	return model.toDomain(), nil
}

// ExistsByEmailOrVoterID ignora o próprio usuário quando exclude é informado.
func (r *UserRepository) ExistsByEmailOrVoterID(ctx context.Context, email, voterID string, exclude domain.UserID) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("(email = ? OR voter_id = ?) AND id <> ?", normalizeEmail(email), strings.TrimSpace(voterID), string(exclude)).
		Count(&total).Error; err != nil {
		return false, fmt.Errorf("gorm usuarios: verificar unicidade: %w", err)
	}
	return total > 0, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id domain.UserID, active bool) error {
	res := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", string(id)).
		Updates(map[string]any{
			"is_active":  active,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("gorm usuarios: alterar ativo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVoters traz apenas eleitores ativos; faixa desconhecida devolve todos.
func (r *UserRepository) ListVoters(ctx context.Context, ageRange domain.AgeRange) ([]domain.User, error) {
	q := r.db.WithContext(ctx).Where("role = ? AND is_active = ?", string(domain.RoleVoter), true)
	if lo, hi, ok := ageRange.Bounds(); ok {
		q = q.Where("age >= ?", lo)
		if hi > 0 {
			q = q.Where("age <= ?", hi)
		}
	}

	var models []userModel
	if err := q.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("gorm usuarios: listar eleitores: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, m := range models {
		users[i] = m.toDomain()
	}
	return users, nil
}

func (r *UserRepository) VoterStats(ctx context.Context) (domain.VoterStats, error) {
	type row struct {
		Total  int64 `gorm:"column:total"`
		Adults int64 `gorm:"column:adults"`
		Senior int64 `gorm:"column:senior"`
	}

	adultLo, adultHi, _ := domain.AgeRange18To60.Bounds()
	seniorLo, _, _ := domain.AgeRange61Plus.Bounds()

	var res row
	if err := r.db.WithContext(ctx).
		Model(&userModel{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN age BETWEEN ? AND ? THEN 1 ELSE 0 END), 0) AS adults, "+
				"COALESCE(SUM(CASE WHEN age >= ? THEN 1 ELSE 0 END), 0) AS senior",
			adultLo, adultHi, seniorLo,
		).
		Where("role = ? AND is_active = ?", string(domain.RoleVoter), true).
		Scan(&res).Error; err != nil {
		return domain.VoterStats{}, fmt.Errorf("gorm usuarios: estatisticas: %w", err)
	}
	return domain.VoterStats{Total: res.Total, Age18To60: res.Adults, Age61Plus: res.Senior}, nil
}

var _ domain.UserRepository = (*UserRepository)(nil)
