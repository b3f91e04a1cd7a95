package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/floresya/backend/internal/apperror"
	"github.com/floresya/backend/internal/repository"
	"github.com/floresya/backend/internal/services"
)

func createTestProduct(t *testing.T, svcs *services.Services, name, sku string, price float64) *repository.Product {
	t.Helper()
	product, err := svcs.Product.Create(context.Background(), &services.CreateProductRequest{
		Name:     name,
		SKU:      sku,
		PriceUSD: price,
		Stock:    10,
	})
	require.NoError(t, err)
	return product
}

func TestProductCreateAndGet(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	created := createTestProduct(t, svcs, "Red Roses", "FY-ROSE-12", 29.99)
	require.NotZero(t, created.ID)
	require.True(t, created.Active)

	got, err := svcs.Product.Get(ctx, created.ID, false)
	require.NoError(t, err)
	require.Equal(t, "Red Roses", got.Name)
	require.Equal(t, 29.99, got.PriceUSD)
}

func TestProductCreateValidation(t *testing.T) {
	svcs, _ := newFixture(t)

	_, err := svcs.Product.Create(context.Background(), &services.CreateProductRequest{
		Name:     "X",
		SKU:      "FY-1",
		PriceUSD: 10,
	})
	require.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
}

func TestProductCreateDuplicateSKU(t *testing.T) {
	svcs, _ := newFixture(t)
	createTestProduct(t, svcs, "Red Roses", "FY-ROSE-12", 29.99)

	_, err := svcs.Product.Create(context.Background(), &services.CreateProductRequest{
		Name:     "Other Roses",
		SKU:      "FY-ROSE-12",
		PriceUSD: 19.99,
	})
	require.True(t, apperror.IsKind(err, apperror.KindConflict), "got %v", err)
}

func TestProductGetMissing(t *testing.T) {
	svcs, _ := newFixture(t)

	_, err := svcs.Product.Get(context.Background(), 999, false)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound), "got %v", err)
}

func TestProductUpdate(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()
	created := createTestProduct(t, svcs, "Red Roses", "FY-ROSE-12", 29.99)

	price := 24.99
	updated, err := svcs.Product.Update(ctx, created.ID, &services.UpdateProductRequest{PriceUSD: &price})
	require.NoError(t, err)
	require.Equal(t, 24.99, updated.PriceUSD)
	require.Equal(t, "Red Roses", updated.Name)

	_, err = svcs.Product.Update(ctx, created.ID, &services.UpdateProductRequest{})
	require.True(t, apperror.IsKind(err, apperror.KindBadRequest), "got %v", err)
}

func TestProductDeleteAndReactivate(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()
	created := createTestProduct(t, svcs, "Red Roses", "FY-ROSE-12", 29.99)

	actor := int64(1)
	require.NoError(t, svcs.Product.Delete(ctx, created.ID, repository.AuditInfo{
		DeletedBy: &actor,
		Reason:    "out of season",
	}))

	// Gone from the active view, still reachable when inactive rows are included.
	_, err := svcs.Product.Get(ctx, created.ID, false)
	require.True(t, apperror.IsKind(err, apperror.KindNotFound), "got %v", err)

	hidden, err := svcs.Product.Get(ctx, created.ID, true)
	require.NoError(t, err)
	require.False(t, hidden.Active)
	require.Equal(t, "out of season", *hidden.DeletionReason)

	restored, err := svcs.Product.Reactivate(ctx, created.ID, &actor)
	require.NoError(t, err)
	require.True(t, restored.Active)
	require.Nil(t, restored.DeletionReason)
	require.NotNil(t, restored.ReactivatedAt)
}

func TestProductList(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	createTestProduct(t, svcs, "Red Roses", "FY-1", 10)
	createTestProduct(t, svcs, "White Lilies", "FY-2", 20)
	createTestProduct(t, svcs, "Pink Roses", "FY-3", 30)

	products, total, err := svcs.Product.List(ctx, repository.ProductFilters{Search: "roses"},
		repository.ListOptions{OrderBy: "price_usd", Ascending: true})
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Red Roses", products[0].Name)

	// Total counts all active products; the search window is narrower.
	require.Equal(t, int64(3), total)
}

func TestProductCarousel(t *testing.T) {
	svcs, _ := newFixture(t)
	ctx := context.Background()

	second := int64(2)
	first := int64(1)
	_, err := svcs.Product.Create(ctx, &services.CreateProductRequest{
		Name: "Late", SKU: "FY-1", PriceUSD: 10, Featured: true, CarouselOrder: &second,
	})
	require.NoError(t, err)
	_, err = svcs.Product.Create(ctx, &services.CreateProductRequest{
		Name: "Early", SKU: "FY-2", PriceUSD: 10, Featured: true, CarouselOrder: &first,
	})
	require.NoError(t, err)
	_, err = svcs.Product.Create(ctx, &services.CreateProductRequest{
		Name: "Plain", SKU: "FY-3", PriceUSD: 10,
	})
	require.NoError(t, err)

	carousel, err := svcs.Product.Carousel(ctx)
	require.NoError(t, err)
	require.Len(t, carousel, 2)
	require.Equal(t, "Early", carousel[0].Name)
	require.Equal(t, "Late", carousel[1].Name)
}
