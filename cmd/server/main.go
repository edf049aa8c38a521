package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	appCheckout "github.com/mzalewsk/paynow_gateway-go/internal/application/checkout"
	"github.com/mzalewsk/paynow_gateway-go/internal/application/fulfillment"
	"github.com/mzalewsk/paynow_gateway-go/internal/application/initiation"
	"github.com/mzalewsk/paynow_gateway-go/internal/application/reconcile"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/event"
	"github.com/mzalewsk/paynow_gateway-go/internal/domain/order"
	"github.com/mzalewsk/paynow_gateway-go/internal/gateway/paynow"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/logging"
	"github.com/mzalewsk/paynow_gateway-go/internal/infra/metrics"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/eventbus"
	httpapi "github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/http"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/outbox"
	"github.com/mzalewsk/paynow_gateway-go/internal/infrastructure/persistence/sqlite"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	cfg := paynow.Config{
		APIKey:              os.Getenv("PAYNOW_API_KEY"),
		SignatureKey:        os.Getenv("PAYNOW_SIGNATURE_KEY"),
		Sandbox:             envOr("PAYNOW_SANDBOX", "true") == "true",
		SupportedCurrencies: paynow.ParseCurrencies(envOr("PAYNOW_SUPPORTED_CURRENCIES", "PLN")),
	}

	db, err := sqlite.Open(envOr("GATEWAY_DB", "gateway.db"))
	if err != nil {
		log.Fatal(err)
	}
	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatal(err)
	}

	logger := &logging.StdoutLogger{}
	counters := &metrics.Counters{}
	client := paynow.NewClient(cfg)

	bus := eventbus.NewInMemoryBus()

	fulfillmentHandler := &fulfillment.Handler{
		Orders: sqlite.NewOrderRepository(db),
		Logger: logger,
	}
	bus.Subscribe(event.OrderCaptured, fulfillmentHandler.Handle)

	dispatcher := &outbox.Dispatcher{
		Repo:         outbox.NewSQLiteRepository(db),
		EventBus:     bus,
		Logger:       logger,
		PollInterval: time.Second,
		BatchSize:    50,
	}
	go dispatcher.Run(context.Background())

	finalizer := &appCheckout.Finalizer{
		Factory:  appCheckout.FactoryFunc(order.FromCheckout),
		Refunder: &appCheckout.ProcessorRefunder{Client: client, Logger: logger},
		Logger:   logger,
		Metrics:  counters,
	}

	engine := &reconcile.Engine{
		UoW:       sqlite.NewUnitOfWork(db),
		Finalizer: finalizer,
		Logger:    logger,
		Metrics:   counters,
	}

	initiationService := &initiation.Service{
		Config:    cfg,
		Client:    client,
		Payments:  sqlite.NewPaymentRepository(db),
		Checkouts: sqlite.NewCheckoutRepository(db),
		Logger:    logger,
		Metrics:   counters,
	}

	webhookHandler := &httpapi.WebhookHandler{
		SignatureKey: []byte(cfg.SignatureKey),
		Processor:    engine,
		Logger:       logger,
		Metrics:      counters,
	}

	checkoutHandler := &httpapi.CheckoutHandler{
		Service: initiationService,
	}

	router := httpapi.NewRouter(webhookHandler, checkoutHandler)

	addr := envOr("GATEWAY_ADDR", ":8080")
	log.Printf("HTTP server running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, router))
}
