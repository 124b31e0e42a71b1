package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/brocantic/marketplace/internal/config"
	"github.com/brocantic/marketplace/internal/events"
	kafkax "github.com/brocantic/marketplace/internal/kafka"
	"github.com/brocantic/marketplace/internal/notifier"
	"github.com/brocantic/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notifier.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	cMsg := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicMessageCreated, workers)
	cItem := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicOrderItemUpdated, workers)

	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, events.TopicMessageCreated, workers)
		if err := cMsg.Start(ctx, svc.HandleMessageCreated); err != nil {
			log.Printf("message consumer exit: %v", err)
			cancel()
		}
	}()
	go func() {
		log.Printf("notifier consumer started: group=%s topic=%s workers=%d", group, events.TopicOrderItemUpdated, workers)
		if err := cItem.Start(ctx, svc.HandleItemUpdated); err != nil {
			log.Printf("item consumer exit: %v", err)
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Println("shutting down notifier...")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
