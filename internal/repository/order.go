package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/postgrest"
)

// Order is a customer order header. Status transitions are recorded in
// order_status_history by whoever changes them; this layer stores and reads,
// it does not police the workflow.
type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     string     `json:"order_number"`
	UserID          *int64     `json:"user_id,omitempty"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerName    string     `json:"customer_name"`
	DeliveryAddress string     `json:"delivery_address"`
	DeliveryDate    *time.Time `json:"delivery_date,omitempty"`
	Status          string     `json:"status"`
	TotalUSD        float64    `json:"total_usd"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Audit

	Items []*OrderItem `json:"items,omitempty"`
}

// OrderItem is one product line on an order.
type OrderItem struct {
	ID           int64   `json:"id"`
	OrderID      int64   `json:"order_id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name"`
	Quantity     int64   `json:"quantity"`
	UnitPriceUSD float64 `json:"unit_price_usd"`
}

// OrderStatusEntry is one row of the order status history.
type OrderStatusEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	ChangedBy *int64    `json:"changed_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderFilters is the order-specific filter vocabulary.
type OrderFilters struct {
	Status             string
	UserID             *int64
	Search             string // matches customer_email and customer_name
	IncludeDeactivated bool
}

// OrderRepository handles order data access, including order items and the
// status history side tables.
type OrderRepository struct {
	*Repository
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(client postgrest.Client, logger zerolog.Logger) *OrderRepository {
	return &OrderRepository{Repository: New(client, "orders", logger)}
}

func decodeOrder(r Record) *Order {
	return &Order{
		ID:              recInt64(r, "id"),
		OrderNumber:     recString(r, "order_number"),
		UserID:          recInt64Ptr(r, "user_id"),
		CustomerEmail:   recString(r, "customer_email"),
		CustomerName:    recString(r, "customer_name"),
		DeliveryAddress: recString(r, "delivery_address"),
		DeliveryDate:    recTimePtr(r, "delivery_date"),
		Status:          recString(r, "status"),
		TotalUSD:        recFloat64(r, "total_usd"),
		Notes:           recString(r, "notes"),
		CreatedAt:       recTime(r, "created_at"),
		UpdatedAt:       recTime(r, "updated_at"),
		Audit:           decodeAudit(r),
	}
}

func decodeOrderItem(r Record) *OrderItem {
	return &OrderItem{
		ID:           recInt64(r, "id"),
		OrderID:      recInt64(r, "order_id"),
		ProductID:    recInt64(r, "product_id"),
		ProductName:  recString(r, "product_name"),
		Quantity:     recInt64(r, "quantity"),
		UnitPriceUSD: recFloat64(r, "unit_price_usd"),
	}
}

// GetByID returns the order or nil when absent.
func (r *OrderRepository) GetByID(ctx context.Context, id int64, includeInactive bool) (*Order, error) {
	record, err := r.FindByID(ctx, id, includeInactive)
	if err != nil || record == nil {
		return nil, err
	}
	return decodeOrder(record), nil
}

// GetWithItems returns the order with its item lines attached, or nil.
func (r *OrderRepository) GetWithItems(ctx context.Context, id int64) (*Order, error) {
	order, err := r.GetByID(ctx, id, false)
	if err != nil || order == nil {
		return nil, err
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// ListItems returns the item lines of an order.
func (r *OrderRepository) ListItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	records, err := r.client.From("order_items").
		Select("*").
		Eq("order_id", orderID).
		Order("id", true).
		Execute(ctx)
	if err != nil {
		return nil, WrapError(err, "listItems", "order_items", r.logger)
	}

	items := make([]*OrderItem, len(records))
	for i, rec := range records {
		items[i] = decodeOrderItem(rec)
	}
	return items, nil
}

// CreateItems inserts the item lines for an order.
func (r *OrderRepository) CreateItems(ctx context.Context, orderID int64, items []*OrderItem) error {
	for _, item := range items {
		data := Record{
			"order_id":       orderID,
			"product_id":     item.ProductID,
			"product_name":   item.ProductName,
			"quantity":       item.Quantity,
			"unit_price_usd": item.UnitPriceUSD,
		}
		if _, err := r.client.From("order_items").Insert(data).Single(ctx); err != nil {
			return WrapError(err, "createItems", "order_items", r.logger)
		}
	}
	return nil
}

// StatusHistory returns the status trail of an order, oldest first.
func (r *OrderRepository) StatusHistory(ctx context.Context, orderID int64) ([]*OrderStatusEntry, error) {
	records, err := r.client.From("order_status_history").
		Select("*").
		Eq("order_id", orderID).
		Order("created_at", true).
		Execute(ctx)
	if err != nil {
		return nil, WrapError(err, "statusHistory", "order_status_history", r.logger)
	}

	entries := make([]*OrderStatusEntry, len(records))
	for i, rec := range records {
		entries[i] = &OrderStatusEntry{
			ID:        recInt64(rec, "id"),
			OrderID:   recInt64(rec, "order_id"),
			Status:    recString(rec, "status"),
			Notes:     recString(rec, "notes"),
			ChangedBy: recInt64Ptr(rec, "changed_by"),
			CreatedAt: recTime(rec, "created_at"),
		}
	}
	return entries, nil
}

// AppendStatus records a status change and stamps it onto the order row.
func (r *OrderRepository) AppendStatus(ctx context.Context, orderID int64, status, notes string, changedBy *int64) (*Order, error) {
	entry := Record{
		"order_id": orderID,
		"status":   status,
		"notes":    notes,
	}
	if changedBy != nil {
		entry["changed_by"] = *changedBy
	}
	if _, err := r.client.From("order_status_history").Insert(entry).Single(ctx); err != nil {
		return nil, WrapError(err, "appendStatus", "order_status_history", r.logger)
	}

	record, err := r.Update(ctx, orderID, Record{"status": status})
	if err != nil {
		return nil, err
	}
	return decodeOrder(record), nil
}

// List returns orders matching the filters.
func (r *OrderRepository) List(ctx context.Context, filters OrderFilters, opts ListOptions) ([]*Order, error) {
	generic := ListFilters{
		Equals:             map[string]interface{}{},
		IncludeDeactivated: filters.IncludeDeactivated,
	}
	if filters.Status != "" {
		generic.Equals["status"] = filters.Status
	}
	if filters.UserID != nil {
		generic.Equals["user_id"] = *filters.UserID
	}
	if filters.Search != "" {
		generic.Search = filters.Search
		generic.SearchColumns = []string{"customer_email", "customer_name"}
	}

	records, err := r.FindAll(ctx, generic, opts)
	if err != nil {
		return nil, err
	}

	orders := make([]*Order, len(records))
	for i, rec := range records {
		orders[i] = decodeOrder(rec)
	}
	return orders, nil
}
