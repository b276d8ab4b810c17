package models

import "time"

// MenuItem is a catalog entry. The catalog is seeded and read-only at runtime.
type MenuItem struct {
	ID        string    `gorm:"size:50;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Price     float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Category  string    `gorm:"size:50;not null;index" json:"category"`
	Position  int       `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
