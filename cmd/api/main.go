package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/recipesmith/backend/config"
	"github.com/recipesmith/backend/internal/database"
	"github.com/recipesmith/backend/internal/router"
	"github.com/recipesmith/backend/internal/server"
	"github.com/recipesmith/backend/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	rdb, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	logger.Info("connected to Redis")

	storage, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize S3", zap.Error(err))
	}
	if err := storage.SetupBucketPolicy(ctx); err != nil {
		// Policy application needs bucket-owner credentials; images are
		// still served when the policy was applied out of band.
		logger.Warn("failed to apply bucket policy", zap.Error(err))
	}

	llm := service.NewLLMService(cfg, logger)
	images := service.NewImageService(cfg, storage, logger)
	recipes := service.NewRecipeService(llm, images, logger)
	store := service.NewRecipeStore(rdb, images, logger)

	engine := router.Setup(router.Services{
		Recipes:     recipes,
		Store:       store,
		Nutrition:   service.NewNutritionService(),
		Ingredients: service.NewIngredientService(cfg, logger),
	}, logger)

	srv := server.New(engine, cfg.ServerHost+":"+cfg.ServerPort, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	logger.Info("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Fatal("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}
