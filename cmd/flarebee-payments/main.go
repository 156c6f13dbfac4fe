package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/cache"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/database"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/env"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/jobqueue"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/payments"
	"github.com/rizal-mmpp/flarebee-payments/internal/pkg/router"
)

func main() {
	app, queue := NewApplication()
	queue.Start()

	// Stop workers before the process exits
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		queue.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4100")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	cfg, err := payments.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	svc := payments.NewServiceFromDB(database.GetDB(), payments.NewSMTPNotifier(), cfg)
	queue := jobqueue.NewQueue(svc, 2)

	app := fiber.New(fiber.Config{
		AppName: "flarebee-payments",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("OPS_USER", "admin"): env.GetEnv("OPS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, svc)

	return app, queue
}
