package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/shopfront-backend/pkg/logger"
)

func TestLoggingRecordsStatusAndBytes(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: logger.FormatJSON})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logg.Info(r.Context(), "inside")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inside, done map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inside))
	require.NoError(t, json.Unmarshal(lines[1], &done))

	assert.Equal(t, "/api/v1/products", inside["path"], "handler logs inherit request fields")
	assert.Equal(t, "request.complete", done["message"])
	assert.EqualValues(t, http.StatusCreated, done["status"])
	assert.EqualValues(t, 5, done["bytes"])
	assert.Equal(t, "10.0.0.9", done["remote_ip"])
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.Status())

	written := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _ = written.Write([]byte("x"))
	assert.Equal(t, http.StatusOK, written.Status(), "a bare Write implies 200")
	assert.Equal(t, 1, written.bytes)

	rec.WriteHeader(http.StatusNoContent)
	rec.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusNoContent, rec.Status(), "first status wins")
}

func TestLoggingWithoutLoggerIsPassThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	Logging(nil)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
