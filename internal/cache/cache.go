// Package cache holds short-lived order list snapshots served to polling
// clients. Every write invalidates the affected keys, so a reader sees a
// change no later than one TTL after it is committed.
package cache

import (
	"context"

	"github.com/google/uuid"

	"github.com/vitcanteen/canteen-backend/internal/models"
)

type OrderCache interface {
	GetList(ctx context.Context, key string) ([]models.Order, bool)
	SetList(ctx context.Context, key string, orders []models.Order)
	Invalidate(ctx context.Context, keys ...string)
}

const keyPrefix = "canteen:orders:"

func AllOrdersKey() string {
	return keyPrefix + "all"
}

func UserOrdersKey(userID uuid.UUID) string {
	return keyPrefix + "user:" + userID.String()
}

// Noop never stores anything; every read falls through to the store.
type Noop struct{}

func (Noop) GetList(context.Context, string) ([]models.Order, bool) { return nil, false }
func (Noop) SetList(context.Context, string, []models.Order)       {}
func (Noop) Invalidate(context.Context, ...string)                  {}
