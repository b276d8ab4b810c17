package services

import (
	"context"

	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/repository"
)

type MenuService struct {
	menu *repository.MenuRepository
}

func NewMenuService(menu *repository.MenuRepository) *MenuService {
	return &MenuService{menu: menu}
}

func (s *MenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.menu.List(ctx)
	if err != nil {
		return nil, storageError("list menu", err)
	}
	return items, nil
}
