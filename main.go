package main

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/packed-go/ticketing-service/config"
	"github.com/packed-go/ticketing-service/internal/cache"
	"github.com/packed-go/ticketing-service/internal/consumer"
	"github.com/packed-go/ticketing-service/internal/handler"
	"github.com/packed-go/ticketing-service/internal/middleware"
	"github.com/packed-go/ticketing-service/internal/qr"
	"github.com/packed-go/ticketing-service/internal/repository"
	"github.com/packed-go/ticketing-service/internal/service"
	"github.com/packed-go/ticketing-service/pkg/database"
	"github.com/packed-go/ticketing-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ: publish domain events, consume catalog updates
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db)
	passRepo := repository.NewPassRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	detailRepo := repository.NewDetailRepository(db)
	consumptionRepo := repository.NewConsumptionRepository(db)

	consumer.NewCatalogConsumer(consumptionRepo).Start(msgs)

	// Optional Redis status cache; nil disables caching
	statusCache := cache.NewStatusCache(cfg.RedisAddr)
	if statusCache == nil {
		log.Println("[Cache] Redis unavailable, serving uncached reads")
	}

	signer := qr.NewSigner(cfg.QRSecret, time.Duration(cfg.QRTTLHours)*time.Hour)
	retryDelay := time.Duration(cfg.LockRetryDelayMS) * time.Millisecond

	// Services
	passSvc := service.NewPassService(passRepo, eventRepo, cfg.LockMaxRetries, retryDelay)
	eventSvc := service.NewEventService(eventRepo, ticketRepo, statusCache)
	ticketSvc := service.NewTicketService(ticketRepo, passRepo, eventRepo, detailRepo, consumptionRepo, signer, publisher, statusCache, cfg.LockMaxRetries, retryDelay)
	redemptionSvc := service.NewRedemptionService(ticketRepo, passRepo, eventRepo, detailRepo, publisher, cfg.LockMaxRetries, retryDelay)
	validationSvc := service.NewValidationService(signer, redemptionSvc)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "ticketing-service"})
	})

	public := e.Group("/api/v1")
	staff := e.Group("/api/v1", middleware.JWTAuth(cfg.JWTSecret))

	handler.NewEventHandler(eventSvc, passSvc).RegisterRoutes(public, staff)
	handler.NewPassHandler(passSvc).RegisterRoutes(public)
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(public)
	handler.NewScanHandler(validationSvc).RegisterRoutes(staff)

	log.Printf("Ticketing Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
