package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/auth"
	"suits-world/internal/models"
	"suits-world/internal/upload"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	adminUser    = &models.User{ID: primitive.NewObjectID(), Username: "admin", Email: "admin@suits-world.com", Role: models.RoleAdmin, IsActive: true}
	customerUser = &models.User{ID: primitive.NewObjectID(), Username: "johndoe", Email: "john@example.com", Role: models.RoleUser, IsActive: true}
)

// tokenAuth accepts the tokens "admin" and "customer".
type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "":
		return nil, auth.ErrMissingToken
	case "admin":
		return adminUser, nil
	case "customer":
		return customerUser, nil
	default:
		return nil, auth.ErrInvalidToken
	}
}

type testResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Data       json.RawMessage    `json:"data"`
	Error      string             `json:"error"`
	Errors     []string           `json:"errors"`
	Pagination *Pagination        `json:"pagination"`
	Token      string             `json:"token"`
	Rejected   []upload.Rejection `json:"rejected"`
}

func request(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func PtrTo[T any](v T) *T {
	return &v
}
