package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/csae99/ayur-sub001/internal/cache"
	"github.com/csae99/ayur-sub001/internal/clients"
	"github.com/csae99/ayur-sub001/internal/config"
	"github.com/csae99/ayur-sub001/internal/coupon"
	"github.com/csae99/ayur-sub001/internal/gateway"
	"github.com/csae99/ayur-sub001/internal/handlers"
	"github.com/csae99/ayur-sub001/internal/messaging"
	"github.com/csae99/ayur-sub001/internal/notification"
	"github.com/csae99/ayur-sub001/internal/repository"
	"github.com/csae99/ayur-sub001/internal/service"
)

func main() {
	log.Println("Order service starting...")

	cfg := config.Load()

	cred := &repository.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		SSLMode:           cfg.DBSSLMode,
		MigrationsDirPath: cfg.Migrations,
	}
	db, err := repository.Connect(cred)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(db, cred); err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	var cartCache cache.CartCache
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis unavailable, cart caching disabled: %v", err)
	} else {
		cartCache = cache.NewRedisCache(redisClient)
	}
	defer redisClient.Close()

	// The message bus is best effort: the core flows must come up without it.
	var publisher service.EventPublisher
	rabbitClient := messaging.NewRabbitMQClient(messaging.NewRabbitMQConfig())
	if err := rabbitClient.Connect(); err != nil {
		log.Printf("RabbitMQ unavailable, status events disabled: %v", err)
	} else {
		defer rabbitClient.Close()
		publisher = messaging.NewPublisher(rabbitClient)
	}

	orderStore := repository.NewOrderStore(db)
	couponStore := repository.NewCouponStore(db)
	cartStore := repository.NewCartStore(db)

	catalogClient := clients.NewHTTPCatalogClient(cfg.CatalogBaseURL, cfg.HTTPClientTimeout)
	identityClient := clients.NewHTTPIdentityClient(cfg.IdentityBaseURL, cfg.HTTPClientTimeout)
	provider := notification.NewHTTPProvider(cfg.EmailURL, cfg.SMSURL, cfg.HTTPClientTimeout)
	dispatcher := notification.NewDispatcher(identityClient, provider, provider, cfg.HTTPClientTimeout)

	var paymentGateway gateway.PaymentGateway
	if cfg.GatewayMock {
		log.Println("Using mock payment gateway")
		paymentGateway = gateway.NewMockGateway()
	} else {
		paymentGateway = gateway.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.HTTPClientTimeout)
	}
	verifier := gateway.NewSignatureVerifier(cfg.GatewaySecret)

	couponValidator := coupon.NewValidator(couponStore)
	couponService := coupon.NewService(couponStore)
	cartService := service.NewCartService(cartStore, cartCache)
	orderService := service.NewOrderService(orderStore, dispatcher, publisher)
	checkoutService := service.NewCheckoutService(
		orderStore, cartService, catalogClient, couponValidator,
		paymentGateway, verifier, dispatcher, publisher, cfg.Currency,
	)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	sweeper := service.NewDeliverySweeper(orderStore, orderService, cfg.DeliverAfter, cfg.SweepInterval)
	go sweeper.Run(sweepCtx)

	app := setupFiberApp()
	handlers.RegisterRoutes(app,
		handlers.NewCheckoutHandler(checkoutService),
		handlers.NewOrderHandler(orderService),
		handlers.NewCouponHandler(couponService, couponValidator),
		handlers.NewCartHandler(cartService),
	)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Order service closing...")
		stopSweeper()
		if err := app.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Order service listening on :%s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server start error: %v", err)
	}
}

func setupFiberApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Order Service v1.0",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} - ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Request-ID,X-Actor-Role,X-User-ID",
	}))

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
