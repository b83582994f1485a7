package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

// Service defines the order operations exposed to authenticated callers.
type Service interface {
	Create(ctx context.Context, caller pkgauth.Caller, req CreateOrderRequest) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, caller pkgauth.Caller) ([]OrderDTO, error)
	Update(ctx context.Context, id uuid.UUID, caller pkgauth.Caller, req UpdateOrderRequest) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error)
	AddProduct(ctx context.Context, orderID, productID uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error)
	RemoveProduct(ctx context.Context, orderID, productID uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, caller pkgauth.Caller, req CreateOrderRequest) (*OrderDTO, error) {
	if caller.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping_address is required")
	}
	method, err := parsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	var out *OrderDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order := &models.Order{
			OwnerID:         caller.ID,
			ShippingAddress: address,
			PaymentMethod:   method,
		}
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		existing, err := repo.ExistingProductIDs(ctx, dedupe(req.ProductIDs))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup products")
		}
		// unknown product ids are skipped rather than failing the order
		for _, productID := range existing {
			if err := repo.AddLink(ctx, order.ID, productID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link product")
			}
		}

		out, err = load(ctx, repo, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return load(ctx, s.repo, order)
}

func (s *service) ListMine(ctx context.Context, caller pkgauth.Caller) ([]OrderDTO, error) {
	if caller.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	list, err := s.repo.ListByOwner(ctx, caller.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	ids := make([]uuid.UUID, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	linked, err := s.repo.ProductsFor(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order products")
	}
	out := make([]OrderDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i], linked[list[i].ID]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, caller pkgauth.Caller, req UpdateOrderRequest) (*OrderDTO, error) {
	updates := map[string]any{}
	if req.ShippingAddress != nil {
		address := strings.TrimSpace(*req.ShippingAddress)
		if address == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping_address cannot be empty")
		}
		updates["shipping_address"] = address
	}
	if req.PaymentMethod != nil {
		method, err := parsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return nil, err
		}
		updates["payment_method"] = method
	}

	var out *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := ownedOrder(ctx, repo, id, caller); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, updates); err != nil {
			return classifyLookup(err)
		}
		reloaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
		}
		if !reflects(reloaded, updates) {
			return pkgerrors.New(pkgerrors.CodeInternal, "order update was not applied")
		}
		out, err = load(ctx, repo, reloaded)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error) {
	var out *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := ownedOrder(ctx, repo, id, caller)
		if err != nil {
			return err
		}
		out, err = load(ctx, repo, order)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return classifyLookup(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) AddProduct(ctx context.Context, orderID, productID uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error) {
	var out *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := ownedOrder(ctx, repo, orderID, caller)
		if err != nil {
			return err
		}
		existing, err := repo.ExistingProductIDs(ctx, []uuid.UUID{productID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
		}
		if len(existing) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := repo.AddLink(ctx, orderID, productID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "link product")
		}
		out, err = load(ctx, repo, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *service) RemoveProduct(ctx context.Context, orderID, productID uuid.UUID, caller pkgauth.Caller) (*OrderDTO, error) {
	var out *OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := ownedOrder(ctx, repo, orderID, caller)
		if err != nil {
			return err
		}
		removed, err := repo.RemoveLink(ctx, orderID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unlink product")
		}
		if !removed {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not linked to this order")
		}
		out, err = load(ctx, repo, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ownedOrder loads the order and checks that caller owns it. Missing orders
// are reported before ownership.
func ownedOrder(ctx context.Context, repo Repository, id uuid.UUID, caller pkgauth.Caller) (*models.Order, error) {
	order, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	if caller.ID == uuid.Nil || order.OwnerID != caller.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

func load(ctx context.Context, repo Repository, order *models.Order) (*OrderDTO, error) {
	linked, err := repo.ProductsFor(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order products")
	}
	return FromModel(order, linked[order.ID]), nil
}

func parsePaymentMethod(raw string) (enums.PaymentMethod, error) {
	method, err := enums.ParsePaymentMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "payment_method must be one of stripe, card")
	}
	return method, nil
}

func reflects(o *models.Order, updates map[string]any) bool {
	if v, ok := updates["shipping_address"]; ok && o.ShippingAddress != v {
		return false
	}
	if v, ok := updates["payment_method"]; ok && o.PaymentMethod != v {
		return false
	}
	return true
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func classifyLookup(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
}
