package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
)

// sqliteSchema mirrors the goose migrations for local sqlite databases and tests.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		price NUMERIC(10,2) NOT NULL,
		brand TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		shipping_address TEXT NOT NULL,
		payment_method TEXT NOT NULL CHECK (payment_method IN ('stripe', 'card')),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_owner_id ON orders(owner_id)`,
	`CREATE TABLE IF NOT EXISTS order_products (
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		PRIMARY KEY (order_id, product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_order_products_product_id ON order_products(product_id)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		review_content TEXT NOT NULL,
		review_maker_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_product_id ON reviews(product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_review_maker_id ON reviews(review_maker_id)`,
}

// ApplySQLiteSchema creates the tables on a sqlite connection. Postgres
// databases are managed by goose instead.
func (c *Client) ApplySQLiteSchema(ctx context.Context) error {
	if c.driver != config.DBDriverSQLite {
		return fmt.Errorf("sqlite schema requested on %s connection", c.driver)
	}
	for _, stmt := range sqliteSchema {
		if err := c.Exec(ctx, stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema (%s): %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(stmt), "\n")
	return strings.TrimSuffix(strings.TrimSpace(line), "(")
}
