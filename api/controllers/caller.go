package controllers

import (
	"net/http"

	"github.com/angelmondragon/shopfront-backend/api/middleware"
	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
)

func requireCaller(r *http.Request) (pkgauth.Caller, error) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		return pkgauth.Caller{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return caller, nil
}

func serviceUnavailable(name string) error {
	return pkgerrors.Newf(pkgerrors.CodeInternal, "%s service unavailable", name)
}
