package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fleetdesk/apiserver/config"
	"github.com/fleetdesk/apiserver/internal/auth"
	"github.com/fleetdesk/apiserver/internal/handlers"
	"github.com/fleetdesk/apiserver/internal/mq"
	"github.com/fleetdesk/apiserver/internal/services"
	"github.com/fleetdesk/apiserver/internal/store"
	"github.com/fleetdesk/apiserver/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	events     *mq.MQ
	logger     *slog.Logger
}

// New constructs a Server with every dependency injected: row store,
// attachment storage, optional event broker, auth and handlers. No
// package-level client handles exist; lifecycle belongs to the caller.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	rowStore, err := store.NewSheetsStore(ctx, cfg.Sheets)
	if err != nil {
		return nil, fmt.Errorf("sheets store: %w", err)
	}

	objectStorage, err := newObjectStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("attachment storage: %w", err)
	}
	if err := objectStorage.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("attachment storage: %w", err)
	}

	events, err := newEvents(ctx, cfg.Events)
	if err != nil {
		return nil, fmt.Errorf("event broker: %w", err)
	}

	userRepo := store.NewUserRepository(rowStore)
	tokenTTL := time.Duration(cfg.TokenTTLHours) * time.Hour
	authService := auth.NewService(userRepo, jwtSecret, tokenTTL, logger)

	attachments := services.NewAttachments(objectStorage)
	mapper := services.NewMapper(rowStore, attachments, location)
	engine := services.NewEngine(rowStore, mapper, attachments, events, cfg.Events.Channel, location, logger)

	authMiddleware := handlers.RequireAuth(authService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/api", func(r chi.Router) {
		handlers.AuthRouter(r, handlers.NewAuthHandler(authService, userRepo), authMiddleware)
		handlers.RowsRouter(r, handlers.NewRowsHandler(engine), authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		events:     events,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.events != nil {
		_ = s.events.Close()
	}
	return s.httpServer.Close()
}

func newObjectStorage(ctx context.Context, cfg config.StorageConfig) (*storage.Storage, error) {
	switch strings.ToLower(cfg.Backend) {
	case "drive":
		client, err := storage.NewDriveClient(ctx, cfg.Drive)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.GCS)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Minio)
		if err != nil {
			return nil, err
		}
		return storage.NewStorage(client), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newEvents(ctx context.Context, cfg config.EventsConfig) (*mq.MQ, error) {
	switch strings.ToLower(cfg.Backend) {
	case "":
		return nil, nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
