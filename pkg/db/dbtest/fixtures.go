package dbtest

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	"github.com/angelmondragon/shopfront-backend/pkg/enums"
)

// SeedUser inserts a user whose email is derived from username.
func SeedUser(t testing.TB, conn *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "not-a-real-hash",
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

// SeedProduct inserts a product priced from a decimal string such as "19.99".
func SeedProduct(t testing.TB, conn *gorm.DB, name, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Brand: "Acme",
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return product
}

// SeedOrder inserts an order owned by owner and links the given products.
func SeedOrder(t testing.TB, conn *gorm.DB, owner *models.User, products ...*models.Product) *models.Order {
	t.Helper()
	order := &models.Order{
		OwnerID:         owner.ID,
		ShippingAddress: "1 Main St",
		PaymentMethod:   enums.PaymentMethodCard,
	}
	if err := conn.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	for _, p := range products {
		if err := conn.Create(&models.OrderProduct{OrderID: order.ID, ProductID: p.ID}).Error; err != nil {
			t.Fatalf("seed order link: %v", err)
		}
	}
	return order
}

// SeedReview inserts a review written by author about product.
func SeedReview(t testing.TB, conn *gorm.DB, author *models.User, product *models.Product, content string) *models.Review {
	t.Helper()
	review := &models.Review{
		ProductID:     product.ID,
		ReviewMakerID: author.ID,
		ReviewContent: content,
	}
	if err := conn.Create(review).Error; err != nil {
		t.Fatalf("seed review: %v", err)
	}
	return review
}
