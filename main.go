package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/recoverly/recoverly/internal/pkg/cache"
	"github.com/recoverly/recoverly/internal/pkg/database"
	"github.com/recoverly/recoverly/internal/pkg/env"
	"github.com/recoverly/recoverly/internal/pkg/llm"
	"github.com/recoverly/recoverly/internal/pkg/mail"
	"github.com/recoverly/recoverly/internal/pkg/processor"
	"github.com/recoverly/recoverly/internal/pkg/recovery"
	"github.com/recoverly/recoverly/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	svc := recovery.NewServiceFromDB(
		database.GetDB(),
		llm.NewClientFromEnv(),
		mail.NewResendMailerFromEnv(),
		processor.NewStripeClientFromEnv(),
	)

	app := fiber.New()
	app.Use(recover.New(), logger.New())
	app.Get("/metrics", monitor.New())

	router.InstallRouter(app, svc)

	return app
}
