// Package seed provisions the demo accounts and the menu catalog.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/repository"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

type Account struct {
	Email    string
	FullName string
}

// Students are the accounts provisioned for the demo deployment.
var Students = []Account{
	{Email: "harshad.1251090072@vit.edu", FullName: "Harshad Pawar"},
	{Email: "sarthak.1251090107@vit.edu", FullName: "Sarthak Pawar"},
	{Email: "gaurav.1251090175@vit.edu", FullName: "Gaurav Pawar"},
	{Email: "sanyam.1251090397@vit.edu", FullName: "Sanyam Pawar"},
}

const ownerName = "Canteen Admin"

// Menu is the static catalog.
var Menu = []models.MenuItem{
	{ID: "samosa", Name: "Samosa", Price: 20, Category: "Snacks"},
	{ID: "vada-pav", Name: "Vada Pav", Price: 15, Category: "Snacks"},
	{ID: "veg-sandwich", Name: "Veg Sandwich", Price: 35, Category: "Snacks"},
	{ID: "poha", Name: "Poha", Price: 25, Category: "Breakfast"},
	{ID: "idli-sambar", Name: "Idli Sambar", Price: 40, Category: "Breakfast"},
	{ID: "masala-dosa", Name: "Masala Dosa", Price: 50, Category: "South Indian"},
	{ID: "veg-thali", Name: "Veg Thali", Price: 90, Category: "Meals"},
	{ID: "chai", Name: "Chai", Price: 10, Category: "Beverages"},
	{ID: "cold-coffee", Name: "Cold Coffee", Price: 40, Category: "Beverages"},
}

// Users inserts the owner and the demo students unless they already exist.
// Roles and secrets are derived with the same rules login uses.
func Users(ctx context.Context, users *repository.UserRepository, auth *services.AuthService, cfg *config.Config, students []Account) (int, error) {
	accounts := append([]Account{{Email: cfg.OwnerEmail, FullName: ownerName}}, students...)

	created := 0
	for _, a := range accounts {
		secret, err := auth.SecretForEmail(a.Email)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.Email, err)
		}
		hash, err := auth.HashSecret(secret)
		if err != nil {
			return created, err
		}

		ok, err := users.CreateIfAbsent(ctx, &models.User{
			Email:    a.Email,
			FullName: a.FullName,
			Role:     auth.RoleForEmail(a.Email),
			Secret:   hash,
		})
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", a.Email, err)
		}
		if ok {
			created++
		}
	}

	slog.Info("users seeded", "created", created, "total", len(accounts))
	return created, nil
}

// Catalog writes the menu, keeping the listed order.
func Catalog(ctx context.Context, menu *repository.MenuRepository, items []models.MenuItem) error {
	rows := make([]models.MenuItem, len(items))
	for i, it := range items {
		it.Position = i
		rows[i] = it
	}
	if err := menu.Upsert(ctx, rows); err != nil {
		return err
	}
	slog.Info("menu seeded", "items", len(rows))
	return nil
}
