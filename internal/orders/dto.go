package orders

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
)

// OrderDTO is returned for every order read or mutation.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	OwnerID         uuid.UUID             `json:"owner_id"`
	ShippingAddress string                `json:"shipping_address"`
	PaymentMethod   enums.PaymentMethod   `json:"payment_method"`
	Products        []products.ProductDTO `json:"products"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// CreateOrderRequest is the POST body. OwnerID and UserID are accepted so
// clients that send them are not rejected, but they are never read: the
// owner is always the caller.
type CreateOrderRequest struct {
	ShippingAddress string          `json:"shipping_address" validate:"required,max=500"`
	PaymentMethod   string          `json:"payment_method" validate:"required"`
	ProductIDs      []uuid.UUID     `json:"product_ids" validate:"max=100"`
	OwnerID         json.RawMessage `json:"owner_id,omitempty"`
	UserID          json.RawMessage `json:"user_id,omitempty"`
}

// UpdateOrderRequest is the PATCH body; nil fields are left untouched.
type UpdateOrderRequest struct {
	ShippingAddress *string `json:"shipping_address,omitempty" validate:"omitempty,min=1,max=500"`
	PaymentMethod   *string `json:"payment_method,omitempty"`
}

func FromModel(o *models.Order, linked []models.Product) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:              o.ID,
		OwnerID:         o.OwnerID,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Products:        products.FromModels(linked),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
