package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/cache"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     *pgxpool.Pool
	redis  *redis.Client
	nats   *nats.Conn
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewHealthHandler creates a health handler over the raw connections.
func NewHealthHandler(db *pgxpool.Pool, redisClient *redis.Client, natsConn *nats.Conn, c *cache.Cache, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		nats:   natsConn,
		cache:  c,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

// Health handles GET /health - liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "floresya-api",
	})
}

// Ready handles GET /ready - readiness with dependency probes.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	dependencies := map[string]string{}

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("database not ready")
		dependencies["database"] = "unavailable"
		status = http.StatusServiceUnavailable
	} else {
		dependencies["database"] = "ready"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// Cache is an accelerator, not a readiness gate.
			dependencies["redis"] = "unavailable"
		} else {
			dependencies["redis"] = "ready"
		}
	} else {
		dependencies["redis"] = "disabled"
	}

	if h.nats != nil {
		if h.nats.IsConnected() {
			dependencies["nats"] = "ready"
		} else {
			dependencies["nats"] = "unavailable"
		}
	} else {
		dependencies["nats"] = "disabled"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":       statusText(status),
		"timestamp":    time.Now(),
		"service":      "floresya-api",
		"dependencies": dependencies,
		"cache_stats":  h.cache.Stats(),
	})
}

func statusText(status int) string {
	if status == http.StatusOK {
		return "ready"
	}
	return "degraded"
}
