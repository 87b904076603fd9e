package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/muhidtech/ecohaven/internal/cart"
	"github.com/muhidtech/ecohaven/internal/checkout"
	"github.com/muhidtech/ecohaven/internal/config"
	"github.com/muhidtech/ecohaven/internal/httpapi"
	"github.com/muhidtech/ecohaven/internal/kv"
	"github.com/muhidtech/ecohaven/internal/order"
	"github.com/muhidtech/ecohaven/internal/product"
	"github.com/muhidtech/ecohaven/internal/session"
	"github.com/muhidtech/ecohaven/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB holds user accounts
	mongoDB, err := user.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())
	users := user.NewMongoStore(mongoDB)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure user indexes: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	// Redis backs the client-local snapshot store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")
	// Session snapshots self-clean in Redis a little after they expire;
	// cart snapshots persist until cleared.
	sessionStore := kv.NewRedis(redisClient, cfg.SessionTTL+time.Hour)
	cartStore := kv.NewRedis(redisClient, 0)

	// SQLite product catalog
	productRepo, err := product.NewRepository(cfg.ProductsDBPath)
	if err != nil {
		log.Fatalf("Failed to open products database: %v", err)
	}
	defer productRepo.Close()
	if err := productRepo.RunMigrations(cfg.ProductsMigrationsPath); err != nil {
		log.Fatalf("Failed to run product migrations: %v", err)
	}
	catalog := product.NewCatalog(productRepo, product.NewRedisCache(redisClient))

	// Postgres orders + outbox
	orderCred := &order.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDBName,
		MigrationsDirPath: cfg.OrdersMigrationsPath,
	}
	orderRepo, err := order.NewRepository(orderCred)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer orderRepo.Close()
	if err := orderRepo.RunMigrations(orderCred); err != nil {
		log.Fatalf("Failed to run order migrations: %v", err)
	}
	log.Printf("Connected to Postgres at %s:%d", cfg.PostgresHost, cfg.PostgresPort)

	// Core modules
	sessionCfg := session.Config{
		TTL:           cfg.SessionTTL,
		CheckInterval: cfg.SessionCheckInterval,
	}
	if cfg.AdminIdentifier != "" && cfg.AdminPassword != "" {
		sessionCfg.Bypass = &session.Bypass{
			Identifier: cfg.AdminIdentifier,
			Password:   cfg.AdminPassword,
		}
	}
	hub := session.NewHub(users, sessionStore, sessionCfg)
	defer hub.Close()

	carts := cart.NewService(cartStore)
	go carts.Run(ctx)
	checkoutSvc := checkout.NewService(orderRepo, carts)

	// Outbox publisher and checkout-event consumer
	publisher := checkout.NewPublisher(orderRepo, cfg.KafkaBrokers...)
	defer publisher.Close()
	go publisher.Run(ctx)

	consumer := cart.NewConsumer(carts, cfg.KafkaBrokers...)
	defer consumer.Close()
	go consumer.Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Hub:            hub,
		Auth:           httpapi.NewAuthHandler(),
		Cart:           httpapi.NewCartHandler(carts, catalog),
		Product:        httpapi.NewProductHandler(catalog),
		Checkout:       httpapi.NewCheckoutHandler(checkoutSvc, orderRepo),
		RequestTimeout: cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: router,
	}

	go func() {
		log.Printf("Storefront listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down storefront...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Storefront stopped")
}
