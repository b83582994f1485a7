package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

// Repository defines persistence operations for orders and their product links.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddLink(ctx context.Context, orderID, productID uuid.UUID) error
	RemoveLink(ctx context.Context, orderID, productID uuid.UUID) (bool, error)
	LinksFor(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error)
	ProductsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Product, error)
	ExistingProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
