package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/soraaya/calcom-booking-webhook/internal/adapters/in/http"
	"github.com/soraaya/calcom-booking-webhook/internal/adapters/out/calcom"
	"github.com/soraaya/calcom-booking-webhook/internal/adapters/out/logger"
	"github.com/soraaya/calcom-booking-webhook/internal/adapters/out/rabbitmq"
	"github.com/soraaya/calcom-booking-webhook/internal/config"
	"github.com/soraaya/calcom-booking-webhook/internal/core/ports/out"
	"github.com/soraaya/calcom-booking-webhook/internal/core/services"
)

func main() {
	// Локально переменные окружения берутся из .env
	godotenv.Load()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := logger.NewConsoleLogger(cfg.App.Timezone)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log := mainLogger.WithModule("Main")

	log.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"timezone":        cfg.App.Timezone,
		"username":        cfg.Cal.Username,
		"eventTypeSlug":   cfg.Cal.EventTypeSlug,
		"debug":           cfg.App.Debug,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
	})

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	calcomAdapter := calcom.NewCalcomAdapter(cfg, mainLogger.WithModule("CalcomAdapter"))

	// Проверяем ключ и доступность Cal.com на старте, недоступность не фатальна
	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.CalTimeout())
	if user, err := calcomAdapter.GetMe(pingCtx); err != nil {
		log.Warn("app.calcom.ping_failed", out.LogFields{
			"error": err.Error(),
		})
	} else {
		log.Info("app.calcom.connected", out.LogFields{
			"userId":   user.ID,
			"username": user.Username,
		})
	}
	cancelPing()

	// Публикация событий о бронях опциональна
	var publisherPort out.EventPublisherPort
	if cfg.RabbitMQ.Enabled {
		publisher, err := rabbitmq.NewBookingEventPublisher(cfg, mainLogger.WithModule("BookingEventPublisher"))
		if err != nil {
			log.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			os.Exit(1)
		}
		publisherPort = publisher

		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("app.rabbitmq.close_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	schedulingService := services.NewSchedulingService(
		calcomAdapter,
		publisherPort,
		cfg,
		mainLogger,
	)

	router := gin.Default()
	router.Use(cors.Default())

	controller := http.NewWebhookController(
		schedulingService,
		cfg,
		mainLogger.WithModule("WebhookController"),
	)
	controller.RegisterRoutes(router)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := router.Run(cfg.HTTP.Host + ":" + cfg.HTTP.Port); err != nil {
			log.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			sigChan <- syscall.SIGTERM
		}
	}()

	sig := <-sigChan
	log.Info("app.shutdown", out.LogFields{
		"signal": sig.String(),
	})
}
