package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

// Service exposes review operations. Mutations are limited to the author.
type Service interface {
	Create(ctx context.Context, caller pkgauth.Caller, req CreateReviewRequest) (*ReviewDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ReviewDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error)
	Update(ctx context.Context, id uuid.UUID, caller pkgauth.Caller, req UpdateReviewRequest) (*ReviewDTO, error)
	Delete(ctx context.Context, id uuid.UUID, caller pkgauth.Caller) (*ReviewDTO, error)
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

func (s *service) Create(ctx context.Context, caller pkgauth.Caller, req CreateReviewRequest) (*ReviewDTO, error) {
	if caller.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	content := strings.TrimSpace(req.ReviewContent)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "review_content is required")
	}

	review := &models.Review{
		ProductID:     req.ProductID,
		ReviewContent: content,
		ReviewMakerID: caller.ID,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		exists, err := repo.ProductExists(ctx, req.ProductID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
		}
		if !exists {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if err := repo.Create(ctx, review); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(review), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ReviewDTO, error) {
	review, err := NewRepository(s.db.DB()).FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	return FromModel(review), nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID) ([]ReviewDTO, error) {
	repo := NewRepository(s.db.DB())
	exists, err := repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	list, err := repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}
	return FromModels(list), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, caller pkgauth.Caller, req UpdateReviewRequest) (*ReviewDTO, error) {
	cols := map[string]any{}
	if req.ReviewContent != nil {
		content := strings.TrimSpace(*req.ReviewContent)
		if content == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "review_content cannot be empty")
		}
		cols["review_content"] = content
	}

	var updated *models.Review
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		if _, err := authoredReview(ctx, repo, id, caller); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, cols); err != nil {
			return classifyLookup(err)
		}
		reloaded, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload review")
		}
		if content, ok := cols["review_content"]; ok && reloaded.ReviewContent != content {
			return pkgerrors.New(pkgerrors.CodeInternal, "review update was not applied")
		}
		updated = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID, caller pkgauth.Caller) (*ReviewDTO, error) {
	var deleted *models.Review
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		review, err := authoredReview(ctx, repo, id, caller)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return classifyLookup(err)
		}
		deleted = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(deleted), nil
}

// authoredReview loads the review and checks that caller wrote it.
func authoredReview(ctx context.Context, repo *Repository, id uuid.UUID, caller pkgauth.Caller) (*models.Review, error) {
	review, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, classifyLookup(err)
	}
	if caller.ID == uuid.Nil || review.ReviewMakerID != caller.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review belongs to another user")
	}
	return review, nil
}

func classifyLookup(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "review not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup review")
}
