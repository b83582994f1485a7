package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)
	return svc, client
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ptr[T any](v T) *T { return &v }

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Create(context.Background(), CreateProductRequest{Name: " Widget ", Price: price("19.9"), Brand: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "19.90", got.Price)
	assert.NotEqual(t, uuid.Nil, got.ID)

	fetched, err := svc.Get(context.Background(), got.ID)
	require.NoError(t, err)
	assert.Equal(t, "19.90", fetched.Price)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc, client := newTestService(t)
	dbtest.SeedProduct(t, client.DB(), "Widget", "1.00")

	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "Widget", Price: price("2.00"), Brand: "Other"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCreateRejectsBadPrices(t *testing.T) {
	svc, _ := newTestService(t)
	for _, p := range []string{"-1", "1.234", "100000000"} {
		_, err := svc.Create(context.Background(), CreateProductRequest{Name: "P" + p, Price: price(p), Brand: "Acme"})
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "price %s: got %v", p, err)
	}
	_, err := svc.Create(context.Background(), CreateProductRequest{Name: "NoPrice", Brand: "Acme"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListOrderedByNameAndEmpty(t *testing.T) {
	svc, client := newTestService(t)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	dbtest.SeedProduct(t, client.DB(), "Zither", "5.00")
	dbtest.SeedProduct(t, client.DB(), "Anvil", "50.00")

	list, err = svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Anvil", list[0].Name)
	assert.Equal(t, "Zither", list[1].Name)
}

func TestUpdateSingleFieldLeavesOthersUnchanged(t *testing.T) {
	svc, client := newTestService(t)
	product := dbtest.SeedProduct(t, client.DB(), "Widget", "19.99")

	got, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{Brand: ptr("Globex")})
	require.NoError(t, err)
	assert.Equal(t, "Globex", got.Brand)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "19.99", got.Price)

	got, err = svc.Update(context.Background(), product.ID, UpdateProductRequest{Price: price("5")})
	require.NoError(t, err)
	assert.Equal(t, "5.00", got.Price)
	assert.Equal(t, "Globex", got.Brand)
}

func TestUpdateNameClashConflicts(t *testing.T) {
	svc, client := newTestService(t)
	dbtest.SeedProduct(t, client.DB(), "Widget", "1.00")
	gadget := dbtest.SeedProduct(t, client.DB(), "Gadget", "1.00")

	_, err := svc.Update(context.Background(), gadget.ID, UpdateProductRequest{Name: ptr("Widget")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), uuid.New(), UpdateProductRequest{Brand: ptr("x")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteReturnsEntityAndCascadesLinks(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	ada := dbtest.SeedUser(t, conn, "ada")
	widget := dbtest.SeedProduct(t, conn, "Widget", "19.99")
	gadget := dbtest.SeedProduct(t, conn, "Gadget", "4.50")
	order := dbtest.SeedOrder(t, conn, ada, widget, gadget)
	dbtest.SeedReview(t, conn, ada, widget, "solid")

	deleted, err := svc.Delete(context.Background(), widget.ID)
	require.NoError(t, err)
	assert.Equal(t, widget.ID, deleted.ID)
	assert.Equal(t, "19.99", deleted.Price)

	var links []models.OrderProduct
	require.NoError(t, conn.Where("order_id = ?", order.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, gadget.ID, links[0].ProductID)

	var reviews int64
	require.NoError(t, conn.Model(&models.Review{}).Where("product_id = ?", widget.ID).Count(&reviews).Error)
	assert.Zero(t, reviews)

	var orders int64
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", order.ID).Count(&orders).Error)
	assert.Equal(t, int64(1), orders, "order survives product deletion")

	_, err = svc.Delete(context.Background(), widget.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryFindExisting(t *testing.T) {
	client := dbtest.Open(t)
	widget := dbtest.SeedProduct(t, client.DB(), "Widget", "1.00")
	repo := NewRepository(client.DB())

	found, err := repo.FindExisting(context.Background(), []uuid.UUID{widget.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{widget.ID}, found)

	found, err = repo.FindExisting(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
