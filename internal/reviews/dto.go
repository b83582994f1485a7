package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
)

type ReviewDTO struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	ReviewContent string    `json:"review_content"`
	ReviewMakerID uuid.UUID `json:"review_maker_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateReviewRequest carries no author; the author is always the caller.
type CreateReviewRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	ReviewContent string    `json:"review_content" validate:"required,max=5000"`
}

// UpdateReviewRequest is the PATCH body. Only the content is mutable.
type UpdateReviewRequest struct {
	ReviewContent *string `json:"review_content,omitempty" validate:"omitempty,min=1,max=5000"`
}

func FromModel(r *models.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	return &ReviewDTO{
		ID:            r.ID,
		ProductID:     r.ProductID,
		ReviewContent: r.ReviewContent,
		ReviewMakerID: r.ReviewMakerID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func FromModels(list []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}
