package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"painelloja/internal/app/admin/audit"
	"painelloja/internal/app/admin/config"
	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/handler"
	"painelloja/internal/app/admin/repository"
	"painelloja/internal/app/admin/service"
	"painelloja/internal/app/admin/storage"
	"painelloja/internal/app/admin/util"
	"painelloja/internal/app/admin/worker"
	"painelloja/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("admin-service", cfg.LogLevel)
	logger.Info().Msg("Starting Admin Service...")

	ctx := context.Background()

	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	logger.Info().Msg("Successfully connected to PostgreSQL")

	if err := migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	viewCache, err := util.NewRedisViewCache(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer viewCache.Close()
	logger.Info().Msg("Successfully connected to Redis")

	kafkaProducer := util.NewKafkaProducer("admin-service", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Kafka producer initialized")

	auditor, err := audit.NewMongoRecorder(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer auditor.Close(ctx)
	logger.Info().Msg("Audit recorder initialized")

	imageStore, err := storage.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Fatal().Err(err).Str("dir", cfg.Uploads.Dir).Msg("Failed to prepare uploads directory")
	}

	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	catalogService := service.NewCatalogService(
		categoryRepo,
		productRepo,
		imageStore,
		viewCache,
		kafkaProducer,
		auditor,
		cfg.Uploads.MaxSizeBytes,
	)
	orderService := service.NewOrderService(
		orderRepo,
		viewCache,
		kafkaProducer,
		auditor,
	)

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	categoryHandler := handler.NewCategoryHandler(catalogService, cfg.Pagination)
	productHandler := handler.NewProductHandler(catalogService, cfg.Pagination)
	orderHandler := handler.NewOrderHandler(orderService, cfg.Pagination)

	router := handler.SetupRoutes(
		categoryHandler,
		productHandler,
		orderHandler,
		authMiddleware,
		imageStore.Dir(),
	)

	if cfg.Cleanup.Enabled {
		cleanupWorker := worker.NewCleanupWorker(productRepo, imageStore.Dir())
		if err := cleanupWorker.Start(ctx, cfg.Cleanup.Schedule); err != nil {
			logger.Fatal().Err(err).Str("schedule", cfg.Cleanup.Schedule).Msg("Failed to start cleanup worker")
		}
		defer cleanupWorker.Stop()
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Address()).Msg("Starting Admin Service HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Admin Service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Admin Service stopped gracefully")
}

// connectDB opens the GORM connection with retry logic so the service
// survives the database coming up a bit later in Docker.
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				sqlDB.SetConnMaxIdleTime(1 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// migrate creates or updates the schema. The join table is registered
// explicitly so its composite primary key is used for the many2many
// association.
func migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&entity.Order{}, "Products", &entity.OrderProduct{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Product{},
		&entity.Order{},
		&entity.OrderProduct{},
	)
}
