package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/database/dbtest"
	"github.com/vitcanteen/canteen-backend/internal/models"
	"github.com/vitcanteen/canteen-backend/internal/repository"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:           "sqlite",
		OwnerEmail:         "canteen@vit.edu",
		OwnerSecret:        "canteen",
		StudentEmailDomain: "vit.edu",
		PRNLength:          10,
		JWTAccessExpiry:    time.Hour,
		TaxRate:            "0.05",
		TotalCheck:         config.TotalCheckFlag,
		OrderValidity:      2 * time.Hour,
		LogRetentionDays:   30,
		AppEnv:             "test",
	}
}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	db      *gorm.DB
	cfg     *config.Config
	users   *repository.UserRepository
	orders  *repository.OrderRepository
	auth    *services.AuthService
	svc     *services.OrderService
	student models.User
	owner   services.Caller
}

func newFixture(t *testing.T, mutate ...func(*config.Config)) *fixture {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db := dbtest.New(t)
	users := repository.NewUserRepository(db)
	orders := repository.NewOrderRepository(db)
	pricing, err := services.NewPricing(cfg.TaxRate)
	require.NoError(t, err)

	student := models.User{
		Email:    "harshad.1251090072@vit.edu",
		FullName: "Harshad Pawar",
		Role:     models.RoleStudent,
		Secret:   "unused",
	}
	_, err = users.CreateIfAbsent(context.Background(), &student)
	require.NoError(t, err)

	return &fixture{
		db:      db,
		cfg:     cfg,
		users:   users,
		orders:  orders,
		auth:    services.NewAuthService(users, cfg),
		svc:     services.NewOrderService(orders, users, nil, pricing, cfg, services.WithClock(newStepClock().Now)),
		student: student,
		owner:   services.Caller{Email: cfg.OwnerEmail, Role: models.RoleOwner},
	}
}

func (f *fixture) studentCaller() services.Caller {
	return services.Caller{UserID: f.student.ID, Email: f.student.Email, Role: models.RoleStudent}
}

func ptr[T any](v T) *T { return &v }
