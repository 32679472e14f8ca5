package main

import (
	"context"
	"time"

	"picboard/pkg/cache"
	"picboard/pkg/config"
	"picboard/pkg/database"
	"picboard/pkg/logger"
	"picboard/pkg/queue"
	"picboard/pkg/s3"
	"picboard/services/submission/internal/app"
)

// @title           Submission Service API
// @version         1.0
// @description     Image submission form: uploads images to object storage and lists submissions

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Migrations are handled by goose - see cmd/migrate/main.go

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}

	s3Client, err := s3.NewClient(cfg)
	if err != nil {
		log.Error("Failed to create S3 client: %v", err)
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := s3Client.EnsureBucket(ctx, cfg.S3BucketName); err != nil {
		log.Warn("Failed to ensure bucket %s: %v", cfg.S3BucketName, err)
	}
	cancel()

	var queueClient *queue.Client
	if cfg.RabbitMQHost != "" {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v", err)
			panic(err)
		}
	} else {
		log.Info("RABBITMQ_HOST not set, submission events are disabled")
	}

	app.Run(cfg, log, db, s3Client, queueClient, redisClient)
}
