package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/api/middleware"
	"github.com/angelmondragon/shopfront-backend/internal/auth"
	ordersvc "github.com/angelmondragon/shopfront-backend/internal/orders"
	productsvc "github.com/angelmondragon/shopfront-backend/internal/products"
	"github.com/angelmondragon/shopfront-backend/internal/users"
	pkgauth "github.com/angelmondragon/shopfront-backend/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopfront-backend/pkg/errors"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

var testLogger = logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func newRequest(method, target, body string, params map[string]string, caller *pkgauth.Caller) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	if caller != nil {
		ctx = middleware.WithCaller(ctx, *caller)
	}
	return req.WithContext(ctx)
}

type stubOrderService struct {
	ordersvc.Service
	createdFor pkgauth.Caller
	createReq  ordersvc.CreateOrderRequest
	err        error
	linked     []uuid.UUID
	unlinked   []uuid.UUID
}

func (s *stubOrderService) Create(_ context.Context, caller pkgauth.Caller, req ordersvc.CreateOrderRequest) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdFor = caller
	s.createReq = req
	return &ordersvc.OrderDTO{ID: uuid.New(), OwnerID: caller.ID, ShippingAddress: req.ShippingAddress}, nil
}

func (s *stubOrderService) AddProduct(_ context.Context, orderID, productID uuid.UUID, _ pkgauth.Caller) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.linked = append(s.linked, productID)
	return &ordersvc.OrderDTO{ID: orderID}, nil
}

func (s *stubOrderService) RemoveProduct(_ context.Context, orderID, productID uuid.UUID, _ pkgauth.Caller) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.unlinked = append(s.unlinked, productID)
	return &ordersvc.OrderDTO{ID: orderID}, nil
}

func (s *stubOrderService) Delete(_ context.Context, id uuid.UUID, _ pkgauth.Caller) (*ordersvc.OrderDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ordersvc.OrderDTO{ID: id}, nil
}

func TestOrderCreateUsesCallerAsOwner(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "ada"}
	svc := &stubOrderService{}
	productID := uuid.New()

	body := `{"shipping_address":"1 Main St","payment_method":"card","product_ids":["` + productID.String() + `"]}`
	rec := httptest.NewRecorder()
	OrderCreate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/orders", body, nil, &caller))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, caller, svc.createdFor)
	assert.Equal(t, []uuid.UUID{productID}, svc.createReq.ProductIDs)

	var order ordersvc.OrderDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &order))
	assert.Equal(t, caller.ID, order.OwnerID)
}

func TestOrderCreateIgnoresOwnerInBody(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "ada"}
	other := uuid.NewString()

	for _, field := range []string{"owner_id", "user_id"} {
		svc := &stubOrderService{}
		body := `{"shipping_address":"1 Main St","payment_method":"card","` + field + `":"` + other + `"}`
		rec := httptest.NewRecorder()
		OrderCreate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/orders", body, nil, &caller))

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, caller, svc.createdFor, field)

		var order ordersvc.OrderDTO
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &order))
		assert.Equal(t, caller.ID, order.OwnerID, field)
	}
}

func TestOrderCreateRequiresCaller(t *testing.T) {
	rec := httptest.NewRecorder()
	OrderCreate(&stubOrderService{}, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/orders", `{}`, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderLinkHandlers(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "ada"}
	orderID, productID := uuid.New(), uuid.New()
	params := map[string]string{"orderId": orderID.String(), "productId": productID.String()}
	svc := &stubOrderService{}

	rec := httptest.NewRecorder()
	OrderAddProduct(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/", "", params, &caller))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	OrderRemoveProduct(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodDelete, "/", "", params, &caller))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []uuid.UUID{productID}, svc.linked)
	assert.Equal(t, []uuid.UUID{productID}, svc.unlinked)
}

func TestOrderDeleteMapsServiceErrors(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "mallory"}
	params := map[string]string{"orderId": uuid.NewString()}

	tests := map[pkgerrors.Code]int{
		pkgerrors.CodeForbidden: http.StatusForbidden,
		pkgerrors.CodeNotFound:  http.StatusNotFound,
		pkgerrors.CodeInternal:  http.StatusInternalServerError,
	}
	for code, status := range tests {
		svc := &stubOrderService{err: pkgerrors.New(code, "boom")}
		rec := httptest.NewRecorder()
		OrderDelete(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodDelete, "/", "", params, &caller))
		assert.Equal(t, status, rec.Code, "code %s", code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, string(code), env.Error.Code)
	}
}

func TestOrderGetRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	OrderGet(&stubOrderService{}, testLogger).ServeHTTP(rec, newRequest(http.MethodGet, "/", "", map[string]string{"orderId": "nope"}, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubProductService struct {
	productsvc.Service
	created productsvc.CreateProductRequest
	err     error
}

func (s *stubProductService) Create(_ context.Context, req productsvc.CreateProductRequest) (*productsvc.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = req
	return &productsvc.ProductDTO{ID: uuid.New(), Name: req.Name, Price: req.Price.StringFixed(2), Brand: req.Brand}, nil
}

func (s *stubProductService) List(context.Context) ([]productsvc.ProductDTO, error) {
	return []productsvc.ProductDTO{}, nil
}

func TestProductCreate(t *testing.T) {
	svc := &stubProductService{}
	rec := httptest.NewRecorder()
	ProductCreate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/products", `{"name":"Widget","price":"19.5","brand":"Acme"}`, nil, nil))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product productsvc.ProductDTO
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &product))
	assert.Equal(t, "19.50", product.Price)
}

func TestProductCreateValidation(t *testing.T) {
	svc := &stubProductService{}
	rec := httptest.NewRecorder()
	ProductCreate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/products", `{"name":"Widget","brand":"Acme"}`, nil, nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "is required", env.Error.Details["price"])
}

func TestProductCreateConflict(t *testing.T) {
	svc := &stubProductService{err: pkgerrors.New(pkgerrors.CodeConflict, "product name already exists")}
	rec := httptest.NewRecorder()
	ProductCreate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/products", `{"name":"Widget","price":1,"brand":"Acme"}`, nil, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductListEmptyIsArray(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductList(&stubProductService{}, testLogger).ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/products", "", nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))
}

type stubAuthService struct {
	err error
}

func (s stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.TokenResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.TokenResponse{AccessToken: "token-for-" + req.Username, TokenType: "Bearer", ExpiresIn: 1980}, nil
}

func TestAuthToken(t *testing.T) {
	rec := httptest.NewRecorder()
	AuthToken(stubAuthService{}, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/auth/token", `{"username":"ada","password":"correct horse"}`, nil, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var token auth.TokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &token))
	assert.Equal(t, "token-for-ada", token.AccessToken)
	assert.Equal(t, int64(1980), token.ExpiresIn)
}

func TestAuthTokenBadCredentials(t *testing.T) {
	svc := stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	rec := httptest.NewRecorder()
	AuthToken(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/auth/token", `{"username":"ada","password":"wrong"}`, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubUserService struct {
	users.Service
	updatedName string
	deletedID   uuid.UUID
}

func (s *stubUserService) Update(_ context.Context, username string, caller pkgauth.Caller, req users.UpdateUserRequest) (*users.UserDTO, error) {
	if caller.Username != username {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot update another user")
	}
	s.updatedName = username
	dto := &users.UserDTO{ID: caller.ID, Username: username}
	if req.FirstName != nil {
		dto.FirstName = *req.FirstName
	}
	return dto, nil
}

func (s *stubUserService) Delete(_ context.Context, userID uuid.UUID, caller pkgauth.Caller) error {
	if caller.ID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete another user")
	}
	s.deletedID = userID
	return nil
}

func TestUserUpdate(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "ada"}
	svc := &stubUserService{}

	rec := httptest.NewRecorder()
	UserUpdate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPatch, "/", `{"first_name":"Ada"}`, map[string]string{"username": "ada"}, &caller))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ada", svc.updatedName)

	rec = httptest.NewRecorder()
	UserUpdate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPatch, "/", `{"first_name":"Eve"}`, map[string]string{"username": "grace"}, &caller))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	UserUpdate(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodPatch, "/", `{"username":"renamed"}`, map[string]string{"username": "ada"}, &caller))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserDelete(t *testing.T) {
	caller := pkgauth.Caller{ID: uuid.New(), Username: "ada"}
	svc := &stubUserService{}

	rec := httptest.NewRecorder()
	UserDelete(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodDelete, "/", "", map[string]string{"userId": caller.ID.String()}, &caller))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(decodeEnvelope(t, rec).Data))
	assert.Equal(t, caller.ID, svc.deletedID)

	rec = httptest.NewRecorder()
	UserDelete(svc, testLogger).ServeHTTP(rec, newRequest(http.MethodDelete, "/", "", map[string]string{"userId": uuid.NewString()}, &caller))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	HealthReady("test", map[string]Pinger{"db": ok, "redis": nil}, testLogger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":["db"]}`, string(decodeEnvelope(t, rec).Data))

	rec = httptest.NewRecorder()
	HealthReady("test", map[string]Pinger{"db": ok, "redis": down}, testLogger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "connection refused", env.Error.Details["redis"])
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive("dev").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", rec.Header().Get("X-Shopfront-Env"))
}
