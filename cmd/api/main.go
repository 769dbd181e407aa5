package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"buyfly/internal/config"
	"buyfly/internal/database"
	"buyfly/internal/domain"
	"buyfly/internal/logger"
	"buyfly/internal/repository"
	"buyfly/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *server.Server, logger *zap.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("Shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give in-flight requests 30 seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := apiServer.Close(); err != nil {
		logger.Error("Error closing server resources", zap.Error(err))
	}

	logger.Info("Server exiting")
	done <- true
}

func main() {
	// .env first so plain os.Getenv consumers see it too.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting BuyFly API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("store_driver", cfg.Store.Driver),
	)

	repos, db, err := buildRepositories(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", zap.Error(err))
	}

	srv := server.NewServer(cfg, log, repos, db)

	done := make(chan bool, 1)
	go gracefulShutdown(srv, log, done)

	log.Info("Server listening", zap.String("addr", srv.Addr))

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatal("HTTP server error", zap.Error(err))
	}

	<-done
	log.Info("Graceful shutdown complete")
}

func buildRepositories(cfg *config.Config, log *zap.Logger) (server.Repositories, *sql.DB, error) {
	if cfg.Store.Driver == "postgres" {
		db, err := database.New(cfg.Database)
		if err != nil {
			return server.Repositories{}, nil, err
		}

		log.Info("Database connected", zap.Any("health", database.Health(db)))

		if err := database.RunMigrations(db, log); err != nil {
			db.Close()
			return server.Repositories{}, nil, err
		}

		return server.Repositories{
			Dewey:    repository.NewPostgresDeweyRepository(db),
			Shipping: repository.NewPostgresShippingRepository(db),
			Sales:    repository.NewPostgresSalesRepository(db),
		}, db, nil
	}

	log.Info("Using in-memory repositories with demo data")
	return server.Repositories{
		Dewey:    repository.NewMemoryDeweyRepository(),
		Shipping: repository.NewMemoryShippingRepository(demoShipping()...),
		Sales:    repository.NewMemorySalesRepository(demoSales()...),
	}, nil, nil
}

func demoSales() []domain.NearbySale {
	return []domain.NearbySale{
		{ID: "sale-1", Type: domain.SaleThrift, Name: "Second Chance Thrift", Address: "412 Main St, Trenton, NJ", Phone: "609-555-0134", Hours: "9am-6pm", Lat: 40.2206, Lng: -74.7597},
		{ID: "sale-2", Type: domain.SaleEstate, Name: "Maple Ave Estate Sale", Address: "88 Maple Ave, Princeton, NJ", Hours: "Sat-Sun 8am-2pm", Lat: 40.3573, Lng: -74.6672},
		{ID: "sale-3", Type: domain.SaleGarage, Name: "Neighborhood Garage Sale", Address: "15 Elm Ct, Hamilton, NJ", Lat: 40.2115, Lng: -74.6566},
	}
}

func demoShipping() []domain.ShippingItem {
	return []domain.ShippingItem{
		{ID: "ship-1", Platform: domain.PlatformEbay, ItemName: "Vintage Polaroid Camera", SalePrice: 64.99, BuyerAddress: "101 Oak St, Columbus, OH", ShipBy: time.Now().AddDate(0, 0, 2)},
		{ID: "ship-2", Platform: domain.PlatformPoshmark, ItemName: "Leather Bomber Jacket", SalePrice: 89.00, BuyerAddress: "77 Pine Rd, Austin, TX", ShipBy: time.Now().AddDate(0, 0, 4)},
	}
}
