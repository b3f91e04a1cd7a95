package services_test

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/cache"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/postgrest"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

var auditTestColumns = []string{
	"active", "deleted_at", "deleted_by", "deletion_reason", "deletion_ip",
	"reactivated_at", "reactivated_by",
}

func withAudit(columns ...string) []string {
	return append(columns, auditTestColumns...)
}

// newFixture wires the full service stack over the in-memory client, with
// caching and eventing disabled.
func newFixture(t *testing.T) (*services.Services, *postgrest.MemoryClient) {
	t.Helper()

	client := postgrest.NewMemoryClient()
	client.AddTable("products", withAudit(
		"id", "name", "summary", "description", "sku", "price_usd", "stock",
		"featured", "carousel_order", "created_at", "updated_at")...)
	client.AddTable("users", withAudit(
		"id", "email", "password_hash", "full_name", "phone", "role",
		"email_verified", "created_at", "updated_at")...)
	client.AddTable("orders", withAudit(
		"id", "order_number", "user_id", "customer_email", "customer_name",
		"delivery_address", "delivery_date", "status", "total_usd", "notes",
		"created_at", "updated_at")...)
	client.AddTable("order_items",
		"id", "order_id", "product_id", "product_name", "quantity", "unit_price_usd")
	client.AddTable("order_status_history",
		"id", "order_id", "status", "notes", "changed_by", "created_at")
	client.AddTable("occasions", withAudit(
		"id", "name", "slug", "description", "display_order", "created_at", "updated_at")...)
	client.AddTable("settings",
		"id", "key", "value", "type", "public", "created_at", "updated_at")
	client.AddTable("product_images", withAudit(
		"id", "product_id", "url", "size", "file_hash", "is_primary",
		"image_index", "created_at", "updated_at")...)

	logger := zerolog.New(io.Discard)
	repos := repository.NewRepositories(client, logger)

	svcs := services.New(services.Deps{
		Repos:      repos,
		Cache:      cache.New(nil, time.Minute, logger),
		Events:     events.NewPublisher(nil, logger),
		BCryptCost: 4,
	}, logger)

	return svcs, client
}
