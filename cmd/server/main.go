package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"planwise/internal/cache"
	"planwise/internal/client"
	"planwise/internal/config"
	"planwise/internal/repository"
	"planwise/internal/service"
	"planwise/internal/transport/rest"
)

// @title Planwise Study Plan API
// @version 1.0
// @description Adaptive study-plan aggregation service
// @host localhost:8080
// @BasePath /v1
func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()
	log.Printf("Backend base URL: %s", cfg.BackendBaseURL)
	log.Printf("Max concurrent fetches: %d", cfg.MaxConcurrent)

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database("planwise")

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Upstream backend client
	backend := client.NewBackend(cfg.BackendBaseURL)

	// Repositories and caches
	cursorRepo := repository.NewCursorRepo(db)
	planCache := cache.NewPlanCache(rdb)
	timeCache := cache.NewActivityTimeCache(rdb)

	// Services
	planSvc := service.NewPlanService(backend, planCache, cursorRepo, cfg.MaxConcurrent)

	container := &rest.Container{
		PlanService: planSvc,
		TimeCache:   timeCache,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/plans/{planId}/load")
		log.Println("  GET  /v1/plans/{planId}/activities")
		log.Println("  GET  /v1/plans/{planId}/catalog")
		log.Println("  GET  /v1/plans/{planId}/days/{dayIndex}/tasks")
		log.Println("  GET  /v1/plans/{planId}/subchapters/{subChapterId}")
		log.Println("  POST /v1/plans/{planId}/subchapters/{subChapterId}/refresh")
		log.Println("  GET/PUT /v1/plans/{planId}/cursor")
		log.Println("  POST /v1/plans/{planId}/cursor/advance")
		log.Println("  GET/POST /v1/activities/{activityId}/time")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
