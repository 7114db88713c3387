package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all route groups against the shared recovery service.
func InstallRouter(app *fiber.App, svc *recovery.Service) {
	setup(app, NewHttpRouter(), NewApiRouter(svc))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
