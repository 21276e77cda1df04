package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // Europe/London must resolve in scratch images

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"transfer/internal/app"
	"transfer/internal/config"
	"transfer/internal/handler"
	"transfer/internal/kafka"
	"transfer/internal/logger"
	"transfer/internal/maps"
	internalRedis "transfer/internal/redis"
	"transfer/internal/repository/postgres"
	"transfer/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := logger.New(&cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer, err = kafka.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.WithError(err).Warn("quote events disabled")
		} else {
			log.WithField("topic", cfg.Kafka.QuotesTopic).Info("publishing quote events")
		}
	}
	defer producer.Close()

	server, err := wireServer(ctx, db, redisClient, producer, nrApp, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to wire server")
	}

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	ctx context.Context,
	db *sql.DB,
	redisClient *redis.Client,
	producer *kafka.Producer,
	nrApp *newrelic.Application,
	cfg *config.Config,
	log *logger.Logger,
) (*http.Server, error) {
	// Initialize Redis stores.
	rateCache := internalRedis.NewRateCacheStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	airportStore := internalRedis.NewAirportStore(redisClient)
	distanceCache := internalRedis.NewDistanceCacheStore(redisClient, cfg.Pricing.DistanceCacheTTL)

	// Initialize repositories.
	vehicleRepo := postgres.NewVehicleRepository(db)
	pricingRepo := postgres.NewPricingRepository(db)
	routeRepo := postgres.NewFixedRouteRepository(db)
	currencyRepo := postgres.NewCurrencyRepository(db)
	childSeatRepo := postgres.NewChildSeatRepository(db)

	// Mapping collaborator. Without a key, distances use the fallback estimate
	// and address search is unavailable.
	var distanceProvider service.DistanceProvider
	var placeFinder service.PlaceFinder
	if cfg.Maps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.Maps)
		if err != nil {
			return nil, err
		}
		distanceProvider = maps.NewDistanceService(mapsClient, cfg.Maps)
		placeFinder = maps.NewPlacesService(mapsClient, cfg.Maps)
	} else {
		log.Warn("maps api key not set, using straight-line distance estimates")
	}

	loc, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		return nil, err
	}

	var rateSource service.RateSource = service.NewRepositoryRateSource(currencyRepo)
	if cfg.Currency.FeedURL != "" {
		rateSource = service.NewFeedRateSource(rateSource, cfg.Currency.FeedURL, cfg.Currency.FeedTimeout)
	}

	// Initialize services.
	distanceResolver := service.NewDistanceResolver(distanceProvider, distanceCache, cfg.Maps.Timeout, log)
	feeCalculator := service.NewFeeCalculator(loc, cfg.Pricing.NightStartHour, cfg.Pricing.NightEndHour)
	converter := service.NewCurrencyConverter(service.CurrencyConverterConfig{
		Source: rateSource,
		Cache:  rateCache,
		Lock:   lockStore,
		TTL:    cfg.Currency.RefreshTTL,
		Log:    log,
	})
	airports := service.NewAirportClassifier(airportStore, cfg.Pricing.AirportRadiusKm, log)
	if err := airports.Seed(ctx, cfg.Pricing.Airports); err != nil {
		log.WithError(err).Warn("failed to seed airports")
	}
	if err := converter.Refresh(ctx); err != nil {
		log.WithError(err).Warn("initial exchange rate load failed, quoting in GBP until refreshed")
	}

	var publisher service.QuotePublisher
	if producer != nil {
		publisher = producer
	}

	quoteService := service.NewQuoteService(service.QuoteServiceDeps{
		Vehicles:    vehicleRepo,
		Pricing:     pricingRepo,
		Routes:      routeRepo,
		ChildSeats:  childSeatRepo,
		Distance:    distanceResolver,
		Fees:        feeCalculator,
		Currency:    converter,
		Airports:    airports,
		Publisher:   publisher,
		Log:         log,
		MaxParallel: cfg.Pricing.MaxParallelLoads,
	})
	adminService := service.NewAdminService(vehicleRepo, pricingRepo, routeRepo, currencyRepo, childSeatRepo, converter, log)
	placeService := service.NewPlaceService(placeFinder, airports)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		QuoteHandler:   handler.NewQuoteHandler(quoteService),
		AdminHandler:   handler.NewAdminHandler(adminService),
		PlaceHandler:   handler.NewPlaceHandler(placeService),
		CatalogHandler: handler.NewCatalogHandler(converter, adminService),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         log,
		AllowOrigins:   cfg.Server.AllowOrigins,
		IdempotencyTTL: cfg.Idempotency.TTL,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
