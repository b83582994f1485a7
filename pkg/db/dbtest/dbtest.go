// Package dbtest opens isolated in-memory sqlite databases carrying the
// application schema.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/shopfront-backend/pkg/db"
)

// Open returns a client bound to a fresh in-memory database with foreign keys enforced.
func Open(t testing.TB) *db.Client {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), db.GormConfig())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	client := db.Wrap(conn)
	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.ApplySQLiteSchema(context.Background()); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return client
}
