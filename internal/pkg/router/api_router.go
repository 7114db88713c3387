package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/recoverly/recoverly/app/controllers"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
)

type ApiRouter struct {
	webhooks  *controllers.WebhookController
	dashboard *controllers.DashboardController
}

func NewApiRouter(svc *recovery.Service) *ApiRouter {
	return &ApiRouter{
		webhooks:  controllers.NewWebhookController(svc),
		dashboard: controllers.NewDashboardController(svc),
	}
}

func (a *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/webhooks/stripe", a.webhooks.HandleStripeWebhook)

	api.Get("/dashboard", a.dashboard.HandleDashboard)
	api.Post("/simulate", a.dashboard.HandleSimulate)
	api.Post("/failed-payments/:id/retrigger", a.dashboard.HandleRetrigger)
}
