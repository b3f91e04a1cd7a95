package services

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/events"
	"github.com/floresya/backend/internal/repository"
)

// OrderItemRequest is one product line in an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest is the payload to place an order.
type CreateOrderRequest struct {
	UserID          *int64             `json:"user_id"`
	CustomerEmail   string             `json:"customer_email" validate:"required,email"`
	CustomerName    string             `json:"customer_name" validate:"required,min=2,max=255"`
	DeliveryAddress string             `json:"delivery_address" validate:"required,min=5"`
	DeliveryDate    *time.Time         `json:"delivery_date"`
	Notes           string             `json:"notes" validate:"max=1000"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderService handles order placement and tracking. It stores status
// changes verbatim; workflow rules live with the callers that decide them.
type OrderService struct {
	repos    *repository.Repositories
	events   *events.Publisher
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewOrderService creates an order service.
func NewOrderService(deps Deps, validate *validator.Validate, logger zerolog.Logger) *OrderService {
	return &OrderService{
		repos:    deps.Repos,
		events:   deps.Events,
		validate: validate,
		logger:   logger.With().Str("service", "order").Logger(),
	}
}

// newOrderNumber produces a short, unique, human-readable order reference.
func newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "FY-" + time.Now().UTC().Format("20060102") + "-" + id[:8]
}

// Create places an order: snapshots product names and prices into the item
// lines, computes the total, and publishes the created event.
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*repository.Order, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	items := make([]*repository.OrderItem, 0, len(req.Items))
	var total float64
	for _, line := range req.Items {
		product, err := s.repos.Product.GetByID(ctx, line.ProductID, false)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NotFound("product", line.ProductID)
		}

		items = append(items, &repository.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     line.Quantity,
			UnitPriceUSD: product.PriceUSD,
		})
		total += product.PriceUSD * float64(line.Quantity)
	}

	data := repository.Record{
		"order_number":     newOrderNumber(),
		"customer_email":   req.CustomerEmail,
		"customer_name":    req.CustomerName,
		"delivery_address": req.DeliveryAddress,
		"status":           "pending",
		"total_usd":        total,
		"notes":            req.Notes,
	}
	if req.UserID != nil {
		data["user_id"] = *req.UserID
	}
	if req.DeliveryDate != nil {
		data["delivery_date"] = *req.DeliveryDate
	}

	record, err := s.repos.Order.Create(ctx, data)
	if err != nil {
		return nil, err
	}
	orderID := recordID(record)

	if err := s.repos.Order.CreateItems(ctx, orderID, items); err != nil {
		return nil, err
	}

	order, err := s.repos.Order.GetWithItems(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.SubjectOrderCreated, map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total_usd":    order.TotalUSD,
	})
	s.logger.Info().Int64("order_id", order.ID).Str("order_number", order.OrderNumber).Msg("order placed")
	return order, nil
}

// Get returns an order with its items, or a not-found error.
func (s *OrderService) Get(ctx context.Context, id int64) (*repository.Order, error) {
	order, err := s.repos.Order.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NotFound("order", id)
	}
	return order, nil
}

// List returns a page of orders plus the total match count.
func (s *OrderService) List(ctx context.Context, filters repository.OrderFilters, opts repository.ListOptions) ([]*repository.Order, int64, error) {
	orders, err := s.repos.Order.List(ctx, filters, opts)
	if err != nil {
		return nil, 0, err
	}

	countFilters := map[string]interface{}{}
	if !filters.IncludeDeactivated {
		countFilters["active"] = true
	}
	if filters.Status != "" {
		countFilters["status"] = filters.Status
	}
	if filters.UserID != nil {
		countFilters["user_id"] = *filters.UserID
	}
	total, err := s.repos.Order.Count(ctx, countFilters)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus stores a status change and its history entry, and publishes
// the change event.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status, notes string, changedBy *int64) (*repository.Order, error) {
	if status == "" {
		return nil, apperror.Validation("status is required", "status")
	}

	order, err := s.repos.Order.AppendStatus(ctx, id, status, notes, changedBy)
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.SubjectOrderStatusChanged, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return order, nil
}

// History returns the status trail of an order.
func (s *OrderService) History(ctx context.Context, id int64) ([]*repository.OrderStatusEntry, error) {
	return s.repos.Order.StatusHistory(ctx, id)
}

// Delete soft-deletes an order.
func (s *OrderService) Delete(ctx context.Context, id int64, audit repository.AuditInfo) error {
	_, err := s.repos.Order.Delete(ctx, id, audit)
	return err
}
