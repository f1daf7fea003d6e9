package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"suits-world/internal/upload"
)

// ImageService checks, stores and serves uploaded product images.
type ImageService interface {
	SaveMultipart(ctx context.Context, files []*multipart.FileHeader) (upload.Result, error)
	DecodeBase64(images []upload.EncodedImage) (upload.Result, error)
	Open(ctx context.Context, name string) (*upload.Object, error)
	Delete(ctx context.Context, name string) error
}

type uploadResponse struct {
	Response
	Rejected []upload.Rejection `json:"rejected"`
}

type base64Request struct {
	Images []upload.EncodedImage `json:"images"`
}

type UploadHandler struct {
	errorResponder
	images          ImageService
	maxRequestBytes int64
}

// NewUploadHandler caps request bodies at maxRequestBytes; multipart overhead
// must fit inside it.
func NewUploadHandler(images ImageService, maxRequestBytes int64, exposeErrors bool) *UploadHandler {
	return &UploadHandler{
		errorResponder:  errorResponder{exposeErrors: exposeErrors},
		images:          images,
		maxRequestBytes: maxRequestBytes,
	}
}

// UploadImages serves POST /upload/images (multipart field "images").
func (h *UploadHandler) UploadImages(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		fail(c, http.StatusBadRequest, "No files uploaded")
		return
	}

	result, err := h.images.SaveMultipart(c.Request.Context(), form.File["images"])
	h.respondUpload(c, result, err)
}

// UploadBase64 serves POST /upload/base64. Images come back as data URLs.
func (h *UploadHandler) UploadBase64(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, base64Limit(h.maxRequestBytes))
	var req base64Request
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.images.DecodeBase64(req.Images)
	h.respondUpload(c, result, err)
}

// base64Limit grows a raw byte budget by the 4/3 expansion of base64.
func base64Limit(n int64) int64 {
	return n + (n+2)/3
}

func (h *UploadHandler) respondUpload(c *gin.Context, result upload.Result, err error) {
	switch {
	case errors.Is(err, upload.ErrNoValidImages):
		c.JSON(http.StatusBadRequest, uploadResponse{
			Response: Response{Success: false, Message: "No valid images uploaded"},
			Rejected: result.Rejected,
		})
	case err != nil:
		h.respondError(c, err, "", "Error uploading images")
	default:
		c.JSON(http.StatusOK, uploadResponse{
			Response: Response{Success: true, Message: "Images uploaded successfully", Data: result.Images},
			Rejected: result.Rejected,
		})
	}
}

// GetImage serves GET /upload/images/:filename.
func (h *UploadHandler) GetImage(c *gin.Context) {
	obj, err := h.images.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		h.respondError(c, err, "", "Error retrieving file")
		return
	}
	defer obj.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}

// DeleteImage serves DELETE /upload/images/:filename.
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	if err := h.images.Delete(c.Request.Context(), c.Param("filename")); err != nil {
		h.respondError(c, err, "", "Error deleting image")
		return
	}
	succeed(c, http.StatusOK, "Image deleted successfully", nil)
}
