// Package server wires the storefront API together: connections,
// repositories, services, handlers and routes.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/config"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/handlers"
	"github.com/floresya/backend/internal/postgrest"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

// Server holds the wired application.
type Server struct {
	config *config.Config
	logger zerolog.Logger

	db    *pgxpool.Pool
	redis *redis.Client
	nats  *nats.Conn

	repos    *repository.Repositories
	services *services.Services
	handlers *handlers.Handlers
}

// New creates a server instance and connects its dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		config: cfg,
		logger: logger,
	}

	if err := s.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := s.initRedis(); err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}
	if err := s.initNATS(); err != nil {
		return nil, fmt.Errorf("failed to initialize nats: %w", err)
	}

	client := postgrest.NewClient(s.db)
	s.repos = repository.NewRepositories(client, logger)

	appCache := cache.New(s.redis, cfg.Redis.CacheTTL, logger)
	publisher := events.NewPublisher(s.nats, logger)

	s.services = services.New(services.Deps{
		Repos:      s.repos,
		Cache:      appCache,
		Events:     publisher,
		BCryptCost: cfg.Shop.BCryptCost,
	}, logger)

	health := handlers.NewHealthHandler(s.db, s.redis, s.nats, appCache, logger)
	pages := handlers.PageLimits{Default: cfg.Shop.DefaultPageSize, Max: cfg.Shop.MaxPageSize}
	s.handlers = handlers.New(s.services, health, pages, logger)

	logger.Info().Msg("server initialized")
	return s, nil
}

func (s *Server) initDatabase() error {
	poolConfig, err := pgxpool.ParseConfig(s.config.Database.DSN())
	if err != nil {
		return err
	}
	poolConfig.MaxConns = int32(s.config.Database.MaxOpenConns)
	poolConfig.MaxConnLifetime = s.config.Database.MaxLifetime

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return err
	}

	s.db = pool
	s.logger.Info().Str("host", s.config.Database.Host).Str("database", s.config.Database.Database).Msg("database connected")
	return nil
}

func (s *Server) initRedis() error {
	if !s.config.Redis.Enabled {
		s.logger.Info().Msg("redis disabled, caching off")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", s.config.Redis.Host, s.config.Redis.Port),
		Password:    s.config.Redis.Password,
		DB:          s.config.Redis.Database,
		PoolSize:    s.config.Redis.PoolSize,
		DialTimeout: s.config.Redis.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Redis.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// Degrade to uncached operation rather than refusing to start.
		s.logger.Warn().Err(err).Msg("redis unreachable, caching off")
		return nil
	}

	s.redis = client
	s.logger.Info().Str("host", s.config.Redis.Host).Msg("redis connected")
	return nil
}

func (s *Server) initNATS() error {
	if !s.config.NATS.Enabled {
		s.logger.Info().Msg("nats disabled, events off")
		return nil
	}

	conn, err := nats.Connect(s.config.NATS.URL,
		nats.MaxReconnects(s.config.NATS.MaxReconnect),
		nats.ReconnectWait(s.config.NATS.ReconnectWait),
		nats.Timeout(s.config.NATS.Timeout),
	)
	if err != nil {
		s.logger.Warn().Err(err).Msg("nats unreachable, events off")
		return nil
	}

	s.nats = conn
	s.logger.Info().Str("url", s.config.NATS.URL).Msg("nats connected")
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(r *chi.Mux) {
	r.Get("/health", s.handlers.Health.Health)
	r.Get("/ready", s.handlers.Health.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handlers.Product.List)
			r.Post("/", s.handlers.Product.Create)
			r.Get("/carousel", s.handlers.Product.Carousel)
			r.Get("/{id}", s.handlers.Product.Get)
			r.Patch("/{id}", s.handlers.Product.Update)
			r.Delete("/{id}", s.handlers.Product.Delete)
			r.Post("/{id}/reactivate", s.handlers.Product.Reactivate)
			r.Get("/{id}/images", s.handlers.Product.Images)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handlers.User.List)
			r.Post("/", s.handlers.User.Create)
			r.Get("/{id}", s.handlers.User.Get)
			r.Patch("/{id}", s.handlers.User.Update)
			r.Delete("/{id}", s.handlers.User.Delete)
			r.Post("/{id}/reactivate", s.handlers.User.Reactivate)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handlers.Order.List)
			r.Post("/", s.handlers.Order.Create)
			r.Get("/{id}", s.handlers.Order.Get)
			r.Get("/{id}/history", s.handlers.Order.History)
			r.Patch("/{id}/status", s.handlers.Order.UpdateStatus)
			r.Delete("/{id}", s.handlers.Order.Delete)
		})

		r.Route("/occasions", func(r chi.Router) {
			r.Get("/", s.handlers.Occasion.List)
			r.Post("/", s.handlers.Occasion.Create)
			r.Get("/{slug}", s.handlers.Occasion.GetBySlug)
			r.Delete("/{id}", s.handlers.Occasion.Delete)
			r.Post("/{id}/reactivate", s.handlers.Occasion.Reactivate)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/public", s.handlers.Settings.Public)
			r.Get("/{key}", s.handlers.Settings.Get)
			r.Put("/{key}", s.handlers.Settings.Set)
		})

		r.Route("/images", func(r chi.Router) {
			r.Post("/", s.handlers.Image.Attach)
			r.Post("/primary", s.handlers.Image.SetPrimary)
			r.Delete("/{id}", s.handlers.Image.Delete)
		})
	})
}

// Close releases the server's connections.
func (s *Server) Close() error {
	if s.nats != nil {
		s.nats.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("redis close failed")
		}
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}
