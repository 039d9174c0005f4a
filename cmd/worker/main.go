package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"presence/internal/accounts"
	"presence/internal/config"
	"presence/internal/employee"
	"presence/internal/queue"
	"presence/internal/store"
)

// Worker provisions login accounts for employees queued by the API.
func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueBackend == "memory" {
		log.Fatalf("worker needs QUEUE_BACKEND=redis; the memory queue is consumed inside the API")
	}

	db, err := store.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient, err := store.NewRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatalf("redis config invalid: %v", err)
	}
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Printf("WARNING: redis at %s not reachable, consumer will keep retrying", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(redisClient.Client, "presence:provisioning")
	provisioner := accounts.NewProvisioner(accounts.NewRepository(db.Client), employee.NewRepository(db.Client))

	log.Println("worker started, waiting for messages...")
	if err := provisioner.Run(ctx, q); err != nil {
		log.Fatalf("worker failed: %v", err)
	}
	log.Println("worker stopped")
}
