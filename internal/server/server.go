package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"buyfly/internal/config"
	custommiddleware "buyfly/internal/middleware"
	"buyfly/internal/repository"
	"buyfly/internal/service"
	"buyfly/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Repositories bundles the storage backends the server serves from;
// they are memory-backed in mock mode and Postgres-backed otherwise.
type Repositories struct {
	Dewey    repository.DeweyRepository
	Shipping repository.ShippingRepository
	Sales    repository.SalesRepository
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
}

func NewServer(cfg *config.Config, logger *zap.Logger, repos Repositories, db *sql.DB) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env != "production"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Services
	scoringService := service.NewScoringService(nil, logger)
	nearbyService := service.NewNearbyService(repos.Sales)

	// Handlers
	transport.NewSourceHandler(scoringService, cfg.Capture.BatchLimit, logger).RegisterRoutes(router)
	transport.NewDeweyHandler(repos.Dewey, logger).RegisterRoutes(router)
	transport.NewNearbyHandler(nearbyService, logger).RegisterRoutes(router)
	transport.NewShippingHandler(repos.Shipping, logger).RegisterRoutes(
		router,
		custommiddleware.APIKeyMiddleware(cfg.Server.APIKey, logger),
	)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
