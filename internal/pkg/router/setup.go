package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
)

func InstallRouter(app *fiber.App, svc *payments.Service) {
	setup(app, NewApiRouter(svc))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
