package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0)
	if err := r.db.WithContext(ctx).Order("position ASC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

// Upsert writes catalog entries, refreshing name, price, category and position
// of entries that already exist.
func (r *MenuRepository) Upsert(ctx context.Context, items []models.MenuItem) error {
	if len(items) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "category", "position", "updated_at"}),
		}).
		Create(&items).Error
	if err != nil {
		return fmt.Errorf("upsert menu: %w", err)
	}
	return nil
}
