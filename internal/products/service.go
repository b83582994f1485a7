package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

// maxPrice is the first value that no longer fits numeric(10,2).
var maxPrice = decimal.New(1, 8)

// Service exposes the catalog operations.
type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context) ([]ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
}

type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.Name)
	brand := strings.TrimSpace(req.Brand)
	if name == "" || brand == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and brand are required")
	}
	if req.Price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price is required")
	}
	price, err := normalizePrice(*req.Price)
	if err != nil {
		return nil, err
	}

	product := &models.Product{Name: name, Price: price, Brand: brand}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := NewRepository(tx).Create(ctx, product); err != nil {
			return classifyWrite(err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return FromModel(product), nil
}

func (s *service) List(ctx context.Context) ([]ProductDTO, error) {
	list, err := NewRepository(s.db.DB()).List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return FromModels(list), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	cols := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		cols["name"] = name
	}
	if req.Brand != nil {
		brand := strings.TrimSpace(*req.Brand)
		if brand == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand cannot be empty")
		}
		cols["brand"] = brand
	}
	if req.Price != nil {
		price, err := normalizePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		cols["price"] = price
	}

	var updated *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return classifyLookup(err)
		}
		if err := repo.Update(ctx, id, cols); err != nil {
			return classifyWrite(err, "update product")
		}
		reloaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload product")
		}
		if !reflects(reloaded, cols) {
			return pkgerrors.New(pkgerrors.CodeInternal, "product update was not applied")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	var deleted *models.Product
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return classifyLookup(err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return classifyLookup(err)
		}
		deleted = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(deleted), nil
}

// normalizePrice rejects negative, oversized and sub-cent prices.
func normalizePrice(p decimal.Decimal) (decimal.Decimal, error) {
	if p.IsNegative() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if !p.Equal(p.Round(2)) {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price must have at most two decimal places")
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "price is too large")
	}
	return p.Round(2), nil
}

func reflects(p *models.Product, cols map[string]any) bool {
	for col, want := range cols {
		switch col {
		case "name":
			if p.Name != want {
				return false
			}
		case "brand":
			if p.Brand != want {
				return false
			}
		case "price":
			if price, ok := want.(decimal.Decimal); ok && !p.Price.Equal(price) {
				return false
			}
		}
	}
	return true
}

func classifyLookup(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
}

func classifyWrite(err error, action string) error {
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product name already exists")
	}
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
