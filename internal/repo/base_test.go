package repo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

func TestBaseDB_BindsContext(t *testing.T) {
	conn := dbtest.Open(t).DB()
	base := NewBase(conn)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	require.NotNil(t, withCtx.Statement)
	assert.Equal(t, ctx, withCtx.Statement.Context)

	assert.Same(t, conn, base.DB(nil))
}

func TestBaseExists(t *testing.T) {
	conn := dbtest.Open(t).DB()
	base := NewBase(conn)
	product := dbtest.SeedProduct(t, conn, "Widget", "9.99")
	ctx := context.Background()

	ok, err := base.Exists(ctx, &models.Product{}, product.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = base.Exists(ctx, &models.Product{}, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBaseUpdateColumns(t *testing.T) {
	conn := dbtest.Open(t).DB()
	base := NewBase(conn)
	product := dbtest.SeedProduct(t, conn, "Widget", "9.99")
	ctx := context.Background()

	require.NoError(t, base.UpdateColumns(ctx, &models.Product{}, product.ID, map[string]any{"brand": "Globex"}))

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", product.ID).Error)
	assert.Equal(t, "Globex", reloaded.Brand)
	assert.Equal(t, "Widget", reloaded.Name)

	err := base.UpdateColumns(ctx, &models.Product{}, uuid.New(), map[string]any{"brand": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NoError(t, base.UpdateColumns(ctx, &models.Product{}, uuid.New(), nil), "empty patch is a no-op")
}

func TestBaseDeleteByID(t *testing.T) {
	conn := dbtest.Open(t).DB()
	base := NewBase(conn)
	product := dbtest.SeedProduct(t, conn, "Widget", "9.99")
	ctx := context.Background()

	require.NoError(t, base.DeleteByID(ctx, &models.Product{}, product.ID))
	assert.ErrorIs(t, base.DeleteByID(ctx, &models.Product{}, product.ID), gorm.ErrRecordNotFound)
}
