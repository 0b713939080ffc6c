// Pacote migrations centraliza as versões gormigrate aplicadas na inicialização.
package migrations

import (
	"fmt"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/marcelojr/urna-digital/internal/platform/storage/postgres"
)

// Índices das consultas quentes: listagem por data e filtro de eleitores ativos por idade.
var queryIndexes = []struct {
	name, table, columns string
}{
	{"idx_elections_start_date", "elections", "start_date"},
	{"idx_users_role_active_age", "users", "role, is_active, age"},
}

func versions() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "202501150001_init_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(postgres.Models()...)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("votes", "candidates", "elections", "users")
			},
		},
		{
			ID: "202502030001_query_indexes",
			Migrate: func(tx *gorm.DB) error {
				for _, idx := range queryIndexes {
					stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns)
					if err := tx.Exec(stmt).Error; err != nil {
						return fmt.Errorf("criar indice %s: %w", idx.name, err)
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				for _, idx := range queryIndexes {
					if err := tx.Exec("DROP INDEX IF EXISTS " + idx.name).Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

func Run(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, versions())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrations: falha ao aplicar: %w", err)
	}

	return nil
}

// RollbackLast desfaz a versão mais recente; usado em testes e em correções manuais.
func RollbackLast(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("migrations: db nulo")
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, versions())
	if err := m.RollbackLast(); err != nil {
		return fmt.Errorf("migrations: falha no rollback: %w", err)
	}
	return nil
}
