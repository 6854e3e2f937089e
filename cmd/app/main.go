package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/thrivenig/travelbook/config"
	"github.com/thrivenig/travelbook/internal/amadeus"
	"github.com/thrivenig/travelbook/internal/bootstrap"
	"github.com/thrivenig/travelbook/internal/cache"
	"github.com/thrivenig/travelbook/internal/email"
	"github.com/thrivenig/travelbook/internal/kafka"
	"github.com/thrivenig/travelbook/internal/report"
	"github.com/thrivenig/travelbook/internal/repository"
	"github.com/thrivenig/travelbook/internal/service/booking"
	"github.com/thrivenig/travelbook/internal/service/hotels"
	"github.com/thrivenig/travelbook/internal/service/identity"
	"github.com/thrivenig/travelbook/internal/service/search"
	"github.com/thrivenig/travelbook/pkg/logger"
)

func main() {
	log := logger.NewLogger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("connect postgres", "error", err)
	}
	defer pool.Close()

	defaultMarkup, err := decimal.NewFromString(cfg.Pricing.DefaultMarkup)
	if err != nil {
		log.Fatal("parse default markup", "error", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Search.OffersCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	amadeusClient := amadeus.NewClient(cfg.Amadeus)
	dispatcher := email.NewDispatcher(email.NewSMTPSender(cfg.Email), cfg.Email.OpsMailbox)

	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	pricingRepo := repository.NewPricingRepository(pool, defaultMarkup)

	identityService := identity.NewIdentityService(userRepo, cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute)
	searchService := search.NewSearchService(amadeusClient, redisCache, log)
	bookingService := booking.NewBookingService(
		requestRepo,
		pricingRepo,
		userRepo,
		amadeusClient,
		dispatcher,
		log,
		booking.WithEventsTopic(producer, cfg.Kafka.RequestEventsTopic),
	)
	hotelService := hotels.NewHotelService(amadeusClient, dispatcher, userRepo, log)
	reportService := report.NewService(requestRepo, userRepo)

	services := bootstrap.Services{
		Identity: identityService,
		Search:   searchService,
		Booking:  bookingService,
		Hotels:   hotelService,
		Pricing:  pricingRepo,
		Report:   reportService,
	}

	if err := bootstrap.Run(ctx, cfg, services); err != nil {
		log.Fatal("server error", "error", err)
	}
}
