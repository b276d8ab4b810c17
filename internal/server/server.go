// Package server assembles the HTTP application from its dependencies.
package server

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"

	"github.com/vitcanteen/canteen-backend/internal/cache"
	"github.com/vitcanteen/canteen-backend/internal/config"
	"github.com/vitcanteen/canteen-backend/internal/dto"
	"github.com/vitcanteen/canteen-backend/internal/handlers"
	"github.com/vitcanteen/canteen-backend/internal/metrics"
	"github.com/vitcanteen/canteen-backend/internal/middleware"
	"github.com/vitcanteen/canteen-backend/internal/repository"
	"github.com/vitcanteen/canteen-backend/internal/routes"
	"github.com/vitcanteen/canteen-backend/internal/services"
)

// New wires repositories, services and handlers into a fiber app. A nil
// snapshots cache disables list caching.
func New(cfg *config.Config, db *gorm.DB, snapshots cache.OrderCache) (*fiber.App, error) {
	pricing, err := services.NewPricing(cfg.TaxRate)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	authService := services.NewAuthService(userRepo, cfg)
	orderService := services.NewOrderService(orderRepo, userRepo, snapshots, pricing, cfg)
	menuService := services.NewMenuService(menuRepo)

	app := fiber.New(fiber.Config{
		AppName:      "canteen-backend",
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.AppEnv != "test" {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	}
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, cfg, authService,
		handlers.NewAuthHandler(authService),
		handlers.NewOrderHandler(orderService),
		handlers.NewMenuHandler(menuService),
		handlers.NewHealthHandler(db),
	)

	return app, nil
}

// ErrorHandler renders errors that escaped a handler. Details of 5xx errors
// stay in the log.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		requestID, _ := c.Locals("requestid").(string)
		slog.Error("unhandled server error",
			"method", c.Method(), "path", c.Path(), "request_id", requestID, "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}
