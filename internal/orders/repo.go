package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/repo"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

type repository struct {
	repo.Base
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db), db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.DB(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Order, error) {
	list := []models.Order{}
	err := r.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.UpdateColumns(ctx, &models.Order{}, id, updates)
}

// Delete removes the order; its links cascade.
func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.DeleteByID(ctx, &models.Order{}, id)
}

// AddLink is idempotent: linking an already linked product is a no-op.
func (r *repository) AddLink(ctx context.Context, orderID, productID uuid.UUID) error {
	link := models.OrderProduct{OrderID: orderID, ProductID: productID}
	return r.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
}

// RemoveLink reports whether a link was removed.
func (r *repository) RemoveLink(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	res := r.DB(ctx).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Delete(&models.OrderProduct{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) LinksFor(ctx context.Context, orderID uuid.UUID) ([]models.OrderProduct, error) {
	links := []models.OrderProduct{}
	if err := r.DB(ctx).Where("order_id = ?", orderID).Order("product_id").Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

type linkedProduct struct {
	OrderID uuid.UUID `gorm:"column:order_id"`
	models.Product
}

// ProductsFor loads the linked products of every order in orderIDs, keyed by order.
func (r *repository) ProductsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Product, error) {
	out := make(map[uuid.UUID][]models.Product, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}
	var rows []linkedProduct
	err := r.DB(ctx).
		Table("order_products").
		Select("order_products.order_id, products.*").
		Joins("JOIN products ON products.id = order_products.product_id").
		Where("order_products.order_id IN ?", orderIDs).
		Order("products.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.OrderID] = append(out[row.OrderID], row.Product)
	}
	return out, nil
}

func (r *repository) ExistingProductIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return products.NewRepository(r.db).FindExisting(ctx, ids)
}
