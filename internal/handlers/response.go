package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"suits-world/internal/auth"
	"suits-world/internal/models"
	"suits-world/internal/repository"
	"suits-world/internal/upload"
)

// Pagination is the window block attached to every collection response.
type Pagination struct {
	Current      int   `json:"current"`
	Total        int   `json:"total"`
	Count        int   `json:"count"`
	TotalRecords int64 `json:"totalRecords"`
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Token      string      `json:"token,omitempty"`
}

func pageResponse[T any](page repository.Page[T]) Response {
	return Response{
		Success: true,
		Data:    page.Items,
		Pagination: &Pagination{
			Current:      page.CurrentPage,
			Total:        page.TotalPages,
			Count:        page.ItemCount,
			TotalRecords: page.TotalRecords,
		},
	}
}

func succeed(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// errorResponder maps domain errors onto status codes. Internal error text is
// only exposed outside production.
type errorResponder struct {
	exposeErrors bool
}

func (r errorResponder) respondError(c *gin.Context, err error, notFound, failure string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Validation error", Errors: verr.Messages()})
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, repository.ErrInvalidID):
		fail(c, http.StatusBadRequest, "Invalid ID format")
	case errors.Is(err, repository.ErrDuplicateSKU):
		fail(c, http.StatusBadRequest, "SKU already exists")
	case errors.Is(err, repository.ErrDuplicateEmail):
		fail(c, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, repository.ErrDuplicateUsername):
		fail(c, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, repository.ErrDuplicateKey):
		fail(c, http.StatusBadRequest, "Duplicate field error")
	case errors.Is(err, auth.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, upload.ErrImageNotFound):
		fail(c, http.StatusNotFound, "Image not found")
	case errors.Is(err, upload.ErrInvalidName):
		fail(c, http.StatusBadRequest, "Invalid file name")
	case errors.Is(err, upload.ErrNoFiles):
		fail(c, http.StatusBadRequest, "No files uploaded")
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
		resp := Response{Success: false, Message: failure}
		if r.exposeErrors {
			resp.Error = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}

// bindJSON decodes the body and answers 400 itself when it cannot.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "Request body is too large")
			return false
		}
		c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request body", Error: err.Error()})
		return false
	}
	return true
}
