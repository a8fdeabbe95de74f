package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/smalltheater/ticketdesk/internal/config"
	"github.com/smalltheater/ticketdesk/internal/database"
	"github.com/smalltheater/ticketdesk/internal/handler"
	"github.com/smalltheater/ticketdesk/internal/queue"
	"github.com/smalltheater/ticketdesk/internal/repository"
	"github.com/smalltheater/ticketdesk/internal/router"
	"github.com/smalltheater/ticketdesk/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	showRepo := repository.NewShowRepo(db)
	bookingRepo := repository.NewBookingRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL)
	if publisher == nil {
		log.Printf("RABBITMQ_URL not set; notification events disabled")
	} else {
		go queue.StartNotificationConsumer(cfg.AMQPURL)
	}

	// queue.Publisher is nil-safe only through the interface check
	// below: a typed nil must not reach the service.
	bookingSvc := func() *service.BookingService {
		if publisher == nil {
			return service.NewBookingService(showRepo, bookingRepo, nil)
		}
		return service.NewBookingService(showRepo, bookingRepo, publisher)
	}()
	catalogSvc := service.NewCatalogService(showRepo, bookingRepo)
	purgeSvc := service.NewPurgeService(showRepo, bookingRepo)

	publicHandler := handler.NewPublicHandler(catalogSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)
	adminAuthHandler := handler.NewAdminAuthHandler(cfg.AdminPassHash, cfg.JWTSecret, cfg.AdminTTLMin)
	adminHandler := handler.NewAdminHandler(catalogSvc, bookingSvc, purgeSvc)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	router.RegisterRoutes(e, publicHandler, bookingHandler, config.LoadRateLimitConfig(), rdb)
	router.RegisterAdmin(e, adminAuthHandler, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
