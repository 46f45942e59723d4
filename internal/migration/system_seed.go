package migration

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
	authzdomain "github.com/railzwaylabs/waterworks/internal/authorization/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedPermissionCatalog upserts the shipped permission catalog. Catalog ids
// are fixed by position so they agree across installations. The active flag
// is left alone on existing rows so operators can switch entries off.
func seedPermissionCatalog(ctx context.Context, db *gorm.DB) error {
	catalog := authzdomain.Catalog()
	rows := make([]authzdomain.PermissionRecord, 0, len(catalog))
	for i, entry := range catalog {
		rows = append(rows, authzdomain.PermissionRecord{
			ID:          snowflake.ID(i + 1),
			Code:        string(entry.Code),
			Name:        entry.Name,
			Description: entry.Description,
			Module:      entry.Module,
			Active:      true,
		})
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "module"}),
	}).Create(&rows).Error
	if err != nil {
		return errors.Wrap(err, "seed permission catalog")
	}
	return nil
}
