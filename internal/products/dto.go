package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients. Price is rendered
// with exactly two fractional digits.
type ProductDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Brand     string    `json:"brand"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateProductRequest accepts price as a JSON number or string.
type CreateProductRequest struct {
	Name  string           `json:"name" validate:"required,max=255"`
	Price *decimal.Decimal `json:"price" validate:"required"`
	Brand string           `json:"brand" validate:"required,max=255"`
}

// UpdateProductRequest is the PATCH body; nil fields are left untouched.
type UpdateProductRequest struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Brand *string          `json:"brand,omitempty" validate:"omitempty,min=1,max=255"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price.StringFixed(2),
		Brand:     p.Brand,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromModels(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
