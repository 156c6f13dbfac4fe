package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/rizal-mmpp/flarebee-payments/app/controllers"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/env"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
)

type ApiRouter struct {
	svc *payments.Service
}

func NewApiRouter(svc *payments.Service) *ApiRouter {
	return &ApiRouter{svc: svc}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{Max: 120}))
	api.Get("/healthz", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// Gateway callbacks; authentication happens in the handler so that a
	// missing server secret answers 500 and a bad token 401.
	webhookController := controllers.NewWebhookController(h.svc)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/xendit", webhookController.HandleXenditWebhook)

	// Operational read endpoints
	opsController := controllers.NewOpsController(h.svc)
	ops := api.Group("/ops", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("OPS_USER", "admin"): env.GetEnv("OPS_PASSWORD", "admin"),
		},
	}))
	ops.Get("/reconciliations", opsController.HandleListReconciliations)
	ops.Get("/webhook-stats", opsController.HandleWebhookStats)
}
