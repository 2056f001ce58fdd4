// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fintrivox/internal/config"
	"fintrivox/internal/handlers"
	"fintrivox/internal/metrics"
	"fintrivox/internal/middleware"
	"fintrivox/internal/repositories"
	"fintrivox/internal/repositories/cache"
	"fintrivox/internal/routes"
	"fintrivox/internal/services/auth"
	"fintrivox/internal/services/catalog"
	"fintrivox/internal/services/dashboard"
	"fintrivox/internal/services/investment"
	"fintrivox/internal/services/kyc"
	"fintrivox/internal/services/ledger"
	"fintrivox/internal/services/notification"
	"fintrivox/internal/services/payment"
	"fintrivox/internal/services/user"
	"fintrivox/internal/utils"
	"fintrivox/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

const dispatchQueueSize = 1024

func main() {
	config.LoadEnv()
	cfg := config.Load()

	db, err := repositories.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			log.Printf("⚠️ Failed to close database connection: %v", err)
		}
	}()

	// Redis is optional; without it the user cache is off and stats use
	// the in-process store.
	var cacheService *cache.CacheService
	if cfg.RedisHost != "" {
		cacheService, err = cache.Dial(context.Background(), cache.RedisConfig{
			Host:        cfg.RedisHost,
			Port:        cfg.RedisPort,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		}, 15*time.Minute)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, continuing without cache: %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	defer func() {
		if cacheService != nil {
			if err := cacheService.Close(); err != nil {
				log.Printf("⚠️ Failed to close Redis connection: %v", err)
			}
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheusCollector(registry)

	// Repositories
	userRepo := repositories.NewUserRepository(db, cacheService)
	ledgerRepo := repositories.NewLedgerRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	methodRepo := repositories.NewPaymentMethodRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	kycRepo := repositories.NewKYCRepository(db)
	statsRepo := repositories.NewStatsRepository(db)

	// Post-commit effects
	pool := worker.NewPool(cfg.DispatchWorkers, dispatchQueueSize)
	dispatcher := notification.NewDispatcher(pool, collector)

	var mailer notification.Mailer = notification.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = notification.NewSMTPMailer(notification.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	}

	var publisher notification.EventPublisher = notification.NoopPublisher{}
	var kafkaPublisher *notification.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher = notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher = kafkaPublisher
		log.Printf("Publishing ledger events to %s on %s", cfg.KafkaTopic, strings.Join(cfg.KafkaBrokers, ","))
	}
	notifier := notification.NewNotifier(dispatcher, notificationRepo, mailer, publisher)

	// Services
	factory := ledger.NewFactory(methodRepo, ledger.NewReferenceGenerator(nil))
	ledgerOpts := []ledger.Option{ledger.WithMetrics(collector)}
	if cfg.StripeSecretKey != "" {
		ledgerOpts = append(ledgerOpts, ledger.WithPaymentProcessor(payment.NewStripeProcessor(cfg.StripeSecretKey, cfg.StripeCurrency)))
	}
	ledgerService := ledger.NewService(ledgerRepo, factory, notifier, ledgerOpts...)
	investmentService := investment.NewService(ledgerRepo, planRepo, factory, notifier, investment.WithMetrics(collector))

	var statsStore cache.Store = cache.NewMemoryStore(cache.SystemClock{})
	if cfg.StatsCache == "redis" && cacheService != nil {
		statsStore = cacheService
	}

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.RefreshSecret)
	authService := auth.NewService(userRepo, tokens)
	userService := user.NewService(userRepo, notifier)
	dashboardService := dashboard.NewService(statsRepo, statsStore, collector)

	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, userService),
		Ledger:       handlers.NewLedgerHandler(ledgerService),
		Investment:   handlers.NewInvestmentHandler(investmentService),
		Catalog:      handlers.NewCatalogHandler(catalog.NewService(planRepo, methodRepo)),
		Notification: handlers.NewNotificationHandler(notification.NewService(notificationRepo)),
		KYC:          handlers.NewKYCHandler(kyc.NewService(kycRepo, userRepo, notifier)),
		Admin:        handlers.NewAdminHandler(dashboardService, userService),
		Health:       handlers.NewHealthHandler(healthChecks(db, cacheService)),
	}

	app := fiber.New(fiber.Config{
		AppName: "fintrivox",
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-CRON-KEY",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowCredentials: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(metrics.HTTPMetrics(collector))

	app.Use("/api/register", authLimiter())
	app.Use("/api/login", authLimiter())

	routes.SetupRoutes(app, h, routes.Options{
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
		CronKey:        cfg.CronKey,
		Gatherer:       registry,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go investment.NewScheduler(investmentService, cfg.ProfitJobInterval).Start(ctx)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("⚠️ Server shutdown: %v", err)
	}
	// Drain queued notifications before the sinks close.
	pool.Stop()
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.Printf("⚠️ Failed to close Kafka writer: %v", err)
		}
	}
}

func healthChecks(db *gorm.DB, cacheService *cache.CacheService) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
	}
	if cacheService != nil {
		checks["redis"] = cacheService
	}
	return checks
}

func authLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
				"code":  "RATE_LIMITED",
			})
		},
	})
}
