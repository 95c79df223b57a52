// app/routes/routes.go
package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"lonetown/app/controllers"
	"lonetown/app/middlewares"
)

// HealthChecker reports the status of each backing service
type HealthChecker func(ctx context.Context) map[string]string

// Handlers groups the controllers mounted by SetupRoutes
type Handlers struct {
	Profile   *controllers.ProfileController
	Match     *controllers.MatchController
	Messaging *controllers.MessagingController
	Health    HealthChecker
	Version   string
	AppName   string
}

// NewApp creates the fiber app with the shared error handler and middleware
func NewApp(corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		StrictRouting: false,
		ServerHeader:  "Fiber",
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			ctx.Status(code)
			return ctx.JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,POST",
	}))
	app.Use(middlewares.RequestLogger())

	return app
}

// SetupRoutes mounts the HTTP API
func SetupRoutes(app *fiber.App, h Handlers) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Lone Town backend running")
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		services := map[string]string{}
		if h.Health != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
			defer cancel()
			services = h.Health(ctx)
		}

		status := "ok"
		for _, s := range services {
			if s != "ok" {
				status = "degraded"
			}
		}

		return c.JSON(fiber.Map{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"services":  services,
		})
	})

	// API version endpoint
	app.Get("/api/version", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version":   h.Version,
			"name":      h.AppName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Post("/profile", h.Profile.SaveProfile)
	app.Post("/daily-match", h.Match.DailyMatch)
	app.Get("/messages", h.Messaging.ListMessages)
	app.Get("/matches/:matchId/state", h.Match.GetMatchState)
}
