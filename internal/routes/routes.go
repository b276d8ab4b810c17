package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/handlers"
	"github.com/vitcanteen/canteen-backend/internal/metrics"
	"github.com/vitcanteen/canteen-backend/internal/middleware"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authService *services.AuthService,
	authHandler *handlers.AuthHandler,
	orderHandler *handlers.OrderHandler,
	menuHandler *handlers.MenuHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")

	// Polling clients hit the order lists every few seconds, so the budget
	// sits well above one poll per 3s.
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/healthz", healthHandler.Check)
	api.Get("/menu", menuHandler.List)

	// Login: 10 req/min per IP
	api.Post("/login", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), authHandler.Login)

	orders := api.Group("/orders", middleware.OptionalAuth(cfg, authService))
	orders.Post("/", orderHandler.Create)

	// Static segments before the :userId catch-all.
	orders.Get("/all", middleware.OwnerRequired(authService), orderHandler.ListAll)
	orders.Get("/:userId", orderHandler.ListForUser)

	orders.Patch("/:orderId/cancel", orderHandler.Cancel)
	orders.Patch("/:orderId", middleware.OwnerRequired(authService), orderHandler.UpdateStatus)
}
