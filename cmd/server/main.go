package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/config"
	"marketplace/internal/api"
	"marketplace/internal/auth"
	"marketplace/internal/broker"
	"marketplace/internal/notify"
	"marketplace/internal/redisclient"
	"marketplace/internal/service"
	"marketplace/internal/store"
	"marketplace/internal/store/memstore"
	"marketplace/internal/util"
	"marketplace/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// appStore is satisfied by both the Postgres and the in-memory store
type appStore interface {
	auth.UserStore
	service.OrderStore
	service.AccountStore
	service.SubscriptionStore
	service.ConnectionStore
	service.TicketStore
	api.Pinger
}

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Observ.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting marketplace service", zap.String("env", cfg.Server.Env))

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	tp, err := util.InitTracer("marketplace", cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	var db appStore
	switch cfg.Database.Driver {
	case "memory":
		db = memstore.New()
		logger.Warn("Using in-memory store, data is lost on restart")
	default:
		pg, err := store.NewStore(cfg.Database.URL)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pg.Close()

		if err := pg.Migrate(context.Background()); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
		db = pg
		logger.Info("Database connected")
	}

	checks := map[string]api.Pinger{"store": db}

	var (
		sessions    auth.SessionRevoker
		locker      service.Locker
		idempotency service.IdempotencyCache
		limiter     service.RateLimiter
	)
	if cfg.Redis.Enabled {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		sessions, locker, idempotency, limiter = redisClient, redisClient, redisClient, redisClient
		checks["redis"] = redisClient
		logger.Info("Redis connected")
	} else {
		logger.Warn("Redis disabled, sessions cannot be revoked and rate limits are off")
	}

	mailer := notify.NewMailer(cfg.Mail)
	if !mailer.Enabled() {
		logger.Warn("SENDGRID_API_KEY not set, notification mail is logged only")
	}

	subscriptionService := service.NewSubscriptionService(db, cfg.Business.ServiceLaunchURL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var (
		eventPublisher service.EventPublisher
		stopWorkers    func()
	)
	if cfg.Kafka.Enabled {
		orderProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
		defer orderProducer.Close()
		notificationProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotification)
		defer notificationProducer.Close()
		logger.Info("Kafka producers initialized")

		eventPublisher = broker.NewEventPublisher(orderProducer, notificationProducer)

		orderConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
		orderWorker := worker.NewOrderWorker(orderConsumer, subscriptionService)
		go func() {
			if err := orderWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Order worker error", zap.Error(err))
			}
		}()

		notificationConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicNotification, cfg.Kafka.NotificationsGroup)
		notificationWorker := worker.NewNotificationWorker(notificationConsumer, mailer)
		go func() {
			if err := notificationWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				logger.Error("Notification worker error", zap.Error(err))
			}
		}()

		stopWorkers = func() {
			if err := orderWorker.Stop(); err != nil {
				logger.Error("Failed to stop order worker", zap.Error(err))
			}
			if err := notificationWorker.Stop(); err != nil {
				logger.Error("Failed to stop notification worker", zap.Error(err))
			}
		}
	} else {
		handler := broker.NewEventHandler()
		worker.RegisterOrderHandlers(handler, subscriptionService)
		worker.RegisterNotificationHandlers(handler, mailer)
		eventPublisher = broker.NewInlinePublisher(handler)
		stopWorkers = func() {}
		logger.Warn("Kafka disabled, events are handled in-process")
	}

	gateway := auth.NewGateway(db, sessions, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	checkoutService := service.NewCheckoutService(db, idempotency, eventPublisher, cfg.Business.IdempotencyTTL)
	paymentService := service.NewPaymentService(db, locker, eventPublisher, cfg.Business.PayLockTTL, cfg.Business.PaymentRedirectDelay)
	orderService := service.NewOrderService(db, db)
	accountService := service.NewAccountService(db, db, db)
	connectionService := service.NewConnectionService(db, db, limiter, &http.Client{}, cfg.Business.DefaultConnectionTimeout)
	supportService := service.NewSupportService(db, eventPublisher)
	contactService := service.NewContactService(eventPublisher)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(api.Dependencies{
		Gateway:       gateway,
		Checkout:      checkoutService,
		Payments:      paymentService,
		Orders:        orderService,
		Accounts:      accountService,
		Subscriptions: subscriptionService,
		Connections:   connectionService,
		Support:       supportService,
		Contact:       contactService,
		Checks:        checks,
		ClientURL:     cfg.Server.ClientURL,
		CookieName:    cfg.Auth.CookieName,
		SecureCookie:  cfg.Server.Env == "production",
		SessionTTL:    cfg.Auth.SessionTTL,
	})
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	stopWorkers()

	logger.Info("Server exited")
}
