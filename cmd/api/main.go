package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/brocantic/marketplace/internal/auth"
	"github.com/brocantic/marketplace/internal/cart"
	"github.com/brocantic/marketplace/internal/catalog"
	"github.com/brocantic/marketplace/internal/checkout"
	"github.com/brocantic/marketplace/internal/config"
	"github.com/brocantic/marketplace/internal/events"
	"github.com/brocantic/marketplace/internal/fulfillment"
	"github.com/brocantic/marketplace/internal/httpx"
	kafkax "github.com/brocantic/marketplace/internal/kafka"
	"github.com/brocantic/marketplace/internal/messaging"
	"github.com/brocantic/marketplace/internal/orders"
	"github.com/brocantic/marketplace/internal/postgres"
	"github.com/brocantic/marketplace/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic. They run until Close so in-flight
	// events still flush during shutdown.
	pCheckout := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicCheckoutCompleted, 1024)
	pCheckout.Start(context.Background())
	pItems := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicOrderItemUpdated, 1024)
	pItems.Start(context.Background())
	pMessages := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicMessageCreated, 1024)
	pMessages.Start(context.Background())

	// Repos & services
	catalogRepo := &catalog.Repo{DB: db}
	ordersRepo := &orders.Repo{DB: db}
	carts := cart.NewService(&cart.PG{DB: db})
	checkoutSvc := &checkout.Service{
		Carts:    carts,
		Store:    &checkout.PG{DB: db},
		Payment:  checkout.NewProcessor(cfg.PaymentDelay, cfg.PaymentSuccessRate),
		Producer: pCheckout,
		Service:  cfg.ServiceName,
	}
	fulfillmentSvc := &fulfillment.Service{
		Store:    &fulfillment.PG{DB: db},
		Producer: pItems,
		Service:  cfg.ServiceName,
	}
	messagingSvc := &messaging.Service{
		Store:    &messaging.PG{DB: db},
		Producer: pMessages,
		Service:  cfg.ServiceName,
	}

	// Router: catalog reads are public, everything else sits behind JWT.
	router := httpx.NewRouter()
	ch := &httpx.CatalogHandler{Repo: catalogRepo}
	ch.RegisterPublic(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.JWTSecret))
		ch.RegisterProtected(r)
		(&httpx.CartHandler{Carts: carts}).Register(r)
		(&httpx.CheckoutHandler{Checkout: checkoutSvc, Orders: ordersRepo}).Register(r)
		(&httpx.FulfillmentHandler{Svc: fulfillmentSvc, Redis: rdb}).Register(r)
		(&httpx.MessagingHandler{Svc: messagingSvc, Redis: rdb}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	for _, p := range []*kafkax.Producer{pCheckout, pItems, pMessages} {
		p.Close()
	}
	for _, p := range []*kafkax.Producer{pCheckout, pItems, pMessages} {
		p.WaitClosed()
	}
}
