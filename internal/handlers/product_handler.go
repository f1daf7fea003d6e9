package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/cache"
	"suits-world/internal/middleware"
	"suits-world/internal/models"
	"suits-world/internal/repository"
)

// ProductStore is what the product endpoints need from persistence.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context, q repository.ProductQuery) (repository.Page[models.Product], error)
	Search(ctx context.Context, text string, page, limit int) (repository.Page[models.Product], error)
	Update(ctx context.Context, id string, in *models.ProductInput, actor primitive.ObjectID) (*models.Product, error)
	Archive(ctx context.Context, id string, actor primitive.ObjectID) (*models.Product, error)
	UpdateInventory(ctx context.Context, id string, quantity int, op models.InventoryOperation) (*models.Product, error)
	All(ctx context.Context) ([]models.Product, error)
}

type ProductHandler struct {
	errorResponder
	store ProductStore
	cache *cache.Cache
}

func NewProductHandler(store ProductStore, c *cache.Cache, exposeErrors bool) *ProductHandler {
	return &ProductHandler{
		errorResponder: errorResponder{exposeErrors: exposeErrors},
		store:          store,
		cache:          c,
	}
}

// writeCached answers from the cache when key is present.
func (h *ProductHandler) writeCached(c *gin.Context, key string) bool {
	raw, found := h.cache.Raw(key)
	if !found {
		return false
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
	return true
}

func (h *ProductHandler) cacheAndWrite(c *gin.Context, key string, resp Response) {
	if err := h.cache.Marshal(key, resp); err != nil {
		log.Printf("⚠️ could not cache %s: %v", key, err)
	}
	c.JSON(http.StatusOK, resp)
}

// ListProducts serves GET /products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	q := repository.ParseProductQuery(c.Request.URL.Query())
	key := cache.ProductListKey(q.CacheKey())
	if h.writeCached(c, key) {
		return
	}

	page, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err, "", "Error fetching products")
		return
	}
	h.cacheAndWrite(c, key, pageResponse(page))
}

// GetProduct serves GET /products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	key := cache.ProductKey(id)
	if h.writeCached(c, key) {
		return
	}

	product, err := h.store.FindByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Product not found", "Error fetching product")
		return
	}
	h.cacheAndWrite(c, key, Response{Success: true, Data: product})
}

// SearchProducts serves GET /products/search/:query.
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	text := strings.TrimSpace(c.Param("query"))
	if text == "" {
		fail(c, http.StatusBadRequest, "Search query is required")
		return
	}
	page, limit := repository.ParsePagination(c.Request.URL.Query())

	result, err := h.store.Search(c.Request.Context(), text, page, limit)
	if err != nil {
		h.respondError(c, err, "", "Error searching products")
		return
	}
	c.JSON(http.StatusOK, pageResponse(result))
}

// CreateProduct serves POST /products. The creator is the authenticated user.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}
	if err := in.RequireCreateFields(); err != nil {
		h.respondError(c, err, "", "Error creating product")
		return
	}

	product := models.NewProduct()
	in.Apply(product)
	product.CreatedBy = actorID(c)

	if err := h.store.Create(c.Request.Context(), product); err != nil {
		h.respondError(c, err, "", "Error creating product")
		return
	}

	h.cache.DeleteByPrefix(cache.ProductListKeyPrefix)
	succeed(c, http.StatusCreated, "Product created successfully", product)
}

// UpdateProduct serves PUT /products/:id with partial-merge semantics.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product, err := h.store.Update(c.Request.Context(), id, &in, actorID(c))
	if err != nil {
		h.respondError(c, err, "Product not found", "Error updating product")
		return
	}

	h.cache.InvalidateProduct(id)
	succeed(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct serves DELETE /products/:id. Products are archived, never removed.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.store.Archive(c.Request.Context(), id, actorID(c))
	if err != nil {
		h.respondError(c, err, "Product not found", "Error deleting product")
		return
	}

	h.cache.InvalidateProduct(id)
	succeed(c, http.StatusOK, "Product archived successfully", product)
}

type inventoryRequest struct {
	Quantity  *int   `json:"quantity"`
	Operation string `json:"operation"`
}

// UpdateInventory serves PATCH /products/:id/inventory.
func (h *ProductHandler) UpdateInventory(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}
	var req inventoryRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		fail(c, http.StatusBadRequest, "Valid quantity is required")
		return
	}
	op, err := models.ParseInventoryOperation(req.Operation)
	if err != nil {
		fail(c, http.StatusBadRequest, "Operation must be one of: set, add, subtract")
		return
	}

	product, err := h.store.UpdateInventory(c.Request.Context(), id, *req.Quantity, op)
	if err != nil {
		h.respondError(c, err, "Product not found", "Error updating inventory")
		return
	}

	h.cache.InvalidateProduct(id)
	succeed(c, http.StatusOK, "Inventory updated successfully", product)
}

// productID reads :id in canonical hex so every spelling shares one cache key.
func (h *ProductHandler) productID(c *gin.Context) (string, bool) {
	id, err := repository.CanonicalID(c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Product not found", "Error fetching product")
		return "", false
	}
	return id, true
}

func actorID(c *gin.Context) primitive.ObjectID {
	if user, found := middleware.CurrentUser(c); found {
		return user.ID
	}
	return primitive.NilObjectID
}
