package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	"github.com/angelmondragon/shopfront-backend/pkg/db"
	"github.com/angelmondragon/shopfront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/shopfront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)
	return svc, client
}

func callerFor(u *models.User) pkgauth.Caller {
	return pkgauth.Caller{ID: u.ID, Username: u.Username}
}

func ptr[T any](v T) *T { return &v }

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func TestCreateAuthorIsCaller(t *testing.T) {
	svc, client := newTestService(t)
	ada := dbtest.SeedUser(t, client.DB(), "ada")
	widget := dbtest.SeedProduct(t, client.DB(), "Widget", "1.00")

	review, err := svc.Create(context.Background(), callerFor(ada), CreateReviewRequest{ProductID: widget.ID, ReviewContent: " sturdy "})
	require.NoError(t, err)
	assert.Equal(t, ada.ID, review.ReviewMakerID)
	assert.Equal(t, "sturdy", review.ReviewContent)

	got, err := svc.Get(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, review.ID, got.ID)
}

func TestCreateRequiresExistingProduct(t *testing.T) {
	svc, client := newTestService(t)
	ada := dbtest.SeedUser(t, client.DB(), "ada")

	_, err := svc.Create(context.Background(), callerFor(ada), CreateReviewRequest{ProductID: uuid.New(), ReviewContent: "hm"})
	requireCode(t, err, pkgerrors.CodeNotFound)

	var count int64
	require.NoError(t, client.DB().Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateRejectsBlankContent(t *testing.T) {
	svc, client := newTestService(t)
	ada := dbtest.SeedUser(t, client.DB(), "ada")
	widget := dbtest.SeedProduct(t, client.DB(), "Widget", "1.00")

	_, err := svc.Create(context.Background(), callerFor(ada), CreateReviewRequest{ProductID: widget.ID, ReviewContent: "   "})
	requireCode(t, err, pkgerrors.CodeValidation)
}

func TestListForProduct(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	ada := dbtest.SeedUser(t, conn, "ada")
	widget := dbtest.SeedProduct(t, conn, "Widget", "1.00")
	gadget := dbtest.SeedProduct(t, conn, "Gadget", "1.00")
	dbtest.SeedReview(t, conn, ada, widget, "one")
	dbtest.SeedReview(t, conn, ada, gadget, "two")

	list, err := svc.ListForProduct(context.Background(), widget.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "one", list[0].ReviewContent)

	_, err = svc.ListForProduct(context.Background(), uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateAuthorOnly(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	ada := dbtest.SeedUser(t, conn, "ada")
	grace := dbtest.SeedUser(t, conn, "grace")
	review := dbtest.SeedReview(t, conn, ada, dbtest.SeedProduct(t, conn, "Widget", "1.00"), "draft")

	_, err := svc.Update(context.Background(), review.ID, callerFor(grace), UpdateReviewRequest{ReviewContent: ptr("hijacked")})
	requireCode(t, err, pkgerrors.CodeForbidden)

	got, err := svc.Update(context.Background(), review.ID, callerFor(ada), UpdateReviewRequest{ReviewContent: ptr("final")})
	require.NoError(t, err)
	assert.Equal(t, "final", got.ReviewContent)
	assert.Equal(t, review.ProductID, got.ProductID)
	assert.Equal(t, ada.ID, got.ReviewMakerID)

	_, err = svc.Update(context.Background(), uuid.New(), callerFor(ada), UpdateReviewRequest{ReviewContent: ptr("x")})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteAuthorOnly(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	ada := dbtest.SeedUser(t, conn, "ada")
	grace := dbtest.SeedUser(t, conn, "grace")
	review := dbtest.SeedReview(t, conn, ada, dbtest.SeedProduct(t, conn, "Widget", "1.00"), "bye")

	_, err := svc.Delete(context.Background(), review.ID, callerFor(grace))
	requireCode(t, err, pkgerrors.CodeForbidden)

	deleted, err := svc.Delete(context.Background(), review.ID, callerFor(ada))
	require.NoError(t, err)
	assert.Equal(t, review.ID, deleted.ID)

	_, err = svc.Get(context.Background(), review.ID)
	requireCode(t, err, pkgerrors.CodeNotFound)
}
