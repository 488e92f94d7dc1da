package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/pos-terminal/internal/backend"
	"github.com/andreasstove999/pos-terminal/internal/barcode"
	"github.com/andreasstove999/pos-terminal/internal/config"
	"github.com/andreasstove999/pos-terminal/internal/httpapi"
	"github.com/andreasstove999/pos-terminal/internal/journal"
	"github.com/andreasstove999/pos-terminal/internal/session"
	"github.com/andreasstove999/pos-terminal/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[pos-terminal] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	st, err := store.Open(cfg.StorePath, logger)
	if err != nil {
		logger.Fatalf("open local store: %v", err)
	}
	defer st.Close()

	be, err := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.BackendTimeout})
	if err != nil {
		logger.Fatalf("backend client: %v", err)
	}

	deps := session.Deps{
		Logger:    logger,
		Catalog:   be,
		Submitter: be,
		Customers: be,
		Store:     st,
		Scanner:   barcode.NewSimulatedScanner(cfg.SimulatedBarcodes, time.Now().UnixNano()),
	}

	// The journal is optional; the till sells with or without the broker.
	var rabbitConn *amqp.Connection
	if cfg.RabbitURL != "" {
		rabbitConn, err = amqp.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatalf("connect to RabbitMQ: %v", err)
		}
		defer rabbitConn.Close()

		pub, err := journal.NewPublisher(rabbitConn)
		if err != nil {
			logger.Fatalf("create journal publisher: %v", err)
		}
		defer pub.Close()
		deps.Journal = pub
	}

	sess := session.New(deps)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.RestorePreferences(ctx); err != nil {
		logger.Printf("restore preferences: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.NewRouter(httpapi.NewHandler(sess)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("pos-terminal listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
}
