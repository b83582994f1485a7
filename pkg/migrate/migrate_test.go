package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateFS(Embedded(), embeddedDir))
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	require.NoError(t, err)

	compiled, err := fs.Glob(Embedded(), embeddedDir+"/*.sql")
	require.NoError(t, err)
	assert.Len(t, compiled, len(onDisk))
}

func TestMigrationsDeclareCascades(t *testing.T) {
	data, err := fs.ReadFile(Embedded(), embeddedDir+"/20250101000003_create_orders_tables.sql")
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"owner_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE",
		"CREATE TABLE IF NOT EXISTS order_products",
		"order_id uuid NOT NULL REFERENCES orders(id) ON DELETE CASCADE",
		"product_id uuid NOT NULL REFERENCES products(id) ON DELETE CASCADE",
		"PRIMARY KEY (order_id, product_id)",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateFSRejectsBadFiles(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad name": {
			"m/create_users.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"duplicate version": {
			"m/20250101000001_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"m/20250101000001_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down": {
			"m/20250101000001_a.sql": {Data: []byte("-- +goose Up\n")},
		},
	}

	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateFS(fsys, "m"))
		})
	}
}

func TestValidateFSReportsEveryProblem(t *testing.T) {
	fsys := fstest.MapFS{
		"m/bad.sql":              {Data: []byte("")},
		"m/20250101000001_a.sql": {Data: []byte("select 1;")},
		"m/README.md":            {Data: []byte("ignored")},
	}
	err := ValidateFS(fsys, "m")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Review Rating!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260203040506_add_review_rating.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "Add Review Rating!", now)
	assert.Error(t, err, "existing file must not be overwritten")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}
