package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
)

func TestRepositoryLinks(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ctx := context.Background()
	ada := dbtest.SeedUser(t, conn, "ada")
	widget := dbtest.SeedProduct(t, conn, "Widget", "19.99")
	gadget := dbtest.SeedProduct(t, conn, "Gadget", "4.50")
	order := dbtest.SeedOrder(t, conn, ada)
	repo := NewRepository(conn)

	require.NoError(t, repo.AddLink(ctx, order.ID, widget.ID))
	require.NoError(t, repo.AddLink(ctx, order.ID, widget.ID), "relinking is a no-op")
	require.NoError(t, repo.AddLink(ctx, order.ID, gadget.ID))

	links, err := repo.LinksFor(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, links, 2)

	byOrder, err := repo.ProductsFor(ctx, []uuid.UUID{order.ID})
	require.NoError(t, err)
	require.Len(t, byOrder[order.ID], 2)
	assert.Equal(t, "Gadget", byOrder[order.ID][0].Name)
	assert.Equal(t, "Widget", byOrder[order.ID][1].Name)
	assert.Equal(t, "19.99", byOrder[order.ID][1].Price.StringFixed(2))

	removed, err := repo.RemoveLink(ctx, order.ID, widget.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveLink(ctx, order.ID, widget.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	links, err = repo.LinksFor(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, gadget.ID, links[0].ProductID)
}

func TestRepositoryLinkToMissingProductFails(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	order := dbtest.SeedOrder(t, conn, dbtest.SeedUser(t, conn, "ada"))

	err := NewRepository(conn).AddLink(context.Background(), order.ID, uuid.New())
	assert.Error(t, err, "foreign keys reject dangling links")
}

func TestRepositoryListByOwner(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	ada := dbtest.SeedUser(t, conn, "ada")
	grace := dbtest.SeedUser(t, conn, "grace")
	dbtest.SeedOrder(t, conn, ada)
	dbtest.SeedOrder(t, conn, ada)
	dbtest.SeedOrder(t, conn, grace)

	list, err := NewRepository(conn).ListByOwner(context.Background(), ada.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, o := range list {
		assert.Equal(t, ada.ID, o.OwnerID)
	}

	empty, err := NewRepository(conn).ListByOwner(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestRepositoryProductsForNoOrders(t *testing.T) {
	client := dbtest.Open(t)
	out, err := NewRepository(client.DB()).ProductsFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
