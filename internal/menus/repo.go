package menus

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yumhub/yumhub-backend/pkg/db/models"
)

// Repository reads store menus.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByIDs returns the menus matching ids keyed by id. Unknown ids are absent from the map.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Menu, error) {
	out := make(map[uuid.UUID]models.Menu, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Menu
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}
