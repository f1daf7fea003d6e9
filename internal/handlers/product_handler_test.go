package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/cache"
	"suits-world/internal/middleware"
	"suits-world/internal/models"
	"suits-world/internal/repository"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	if args.Error(0) == nil {
		product.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockProductStore) FindByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductStore) List(ctx context.Context, q repository.ProductQuery) (repository.Page[models.Product], error) {
	args := m.Called(ctx, q)
	return args.Get(0).(repository.Page[models.Product]), args.Error(1)
}

func (m *MockProductStore) Search(ctx context.Context, text string, page, limit int) (repository.Page[models.Product], error) {
	args := m.Called(ctx, text, page, limit)
	return args.Get(0).(repository.Page[models.Product]), args.Error(1)
}

func (m *MockProductStore) Update(ctx context.Context, id string, in *models.ProductInput, actor primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductStore) Archive(ctx context.Context, id string, actor primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductStore) UpdateInventory(ctx context.Context, id string, quantity int, op models.InventoryOperation) (*models.Product, error) {
	args := m.Called(ctx, id, quantity, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductStore) All(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func setupProductRouter(t *testing.T, store ProductStore, exposeErrors bool) *gin.Engine {
	t.Helper()
	c := cache.New(time.Minute)
	t.Cleanup(c.Close)

	h := NewProductHandler(store, c, exposeErrors)
	authn := middleware.RequireAuth(tokenAuth{})

	r := gin.New()
	r.GET("/products", h.ListProducts)
	r.GET("/products/search/:query", h.SearchProducts)
	r.GET("/products/export", authn, h.ExportProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", authn, h.CreateProduct)
	r.PUT("/products/:id", authn, h.UpdateProduct)
	r.DELETE("/products/:id", authn, h.DeleteProduct)
	r.PATCH("/products/:id/inventory", authn, h.UpdateInventory)
	return r
}

func storedProduct(name string, price float64) *models.Product {
	p := models.NewProduct()
	p.ID = primitive.NewObjectID()
	p.Name = name
	p.Description = "description"
	p.Price = price
	p.Category = "mens"
	p.Status = models.StatusActive
	p.CreatedBy = adminUser.ID
	p.Inventory.Quantity = 50
	return p
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"name":        "A",
		"description": "Two-piece suit",
		"price":       100,
		"sku":         "X1",
		"category":    "mens",
		"inventory":   map[string]interface{}{"quantity": 5, "lowStockThreshold": 10},
	}
}

func TestCreateProduct(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	store.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.CreatedBy == adminUser.ID && p.SKU == "X1" && p.Inventory.TrackQuantity
	})).Return(nil).Once()

	w := request(t, r, http.MethodPost, "/products", "admin", createBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Product created successfully", resp.Message)

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, "low-stock", product["stockStatus"])
	assert.Equal(t, "draft", product["status"])
	assert.Equal(t, product["_id"], product["id"])
	store.AssertExpectations(t)
}

func TestCreateProductRequiresDescription(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	body := createBody()
	delete(body, "description")

	w := request(t, r, http.MethodPost, "/products", "admin", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Product description is required"}, decode(t, w).Errors)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)
	store.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateSKU).Once()

	w := request(t, r, http.MethodPost, "/products", "admin", createBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "SKU already exists", resp.Message)
}

func TestCreateProductValidation(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	w := request(t, r, http.MethodPost, "/products", "admin", map[string]interface{}{"price": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "Validation error", resp.Message)
	assert.ElementsMatch(t, []string{
		"Product name is required",
		"Product description is required",
		"Category is required",
	}, resp.Errors)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	w = request(t, r, http.MethodPost, "/products", "", createBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No token provided", decode(t, w).Message)
}

func TestListProductsPriceRangeAndCache(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	items := []models.Product{*storedProduct("Navy Suit", 500), *storedProduct("Grey Suit", 800)}
	store.On("List", mock.Anything, mock.MatchedBy(func(q repository.ProductQuery) bool {
		return q.MinPrice != nil && *q.MinPrice == 500 &&
			q.MaxPrice != nil && *q.MaxPrice == 800 &&
			q.Status == models.StatusActive
	})).Return(repository.NewPage(items, 1, 2, 5), nil).Once()

	for i := 0; i < 2; i++ {
		w := request(t, r, http.MethodGet, "/products?minPrice=500&maxPrice=800&limit=2", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		resp := decode(t, w)
		require.NotNil(t, resp.Pagination)
		assert.Equal(t, Pagination{Current: 1, Total: 3, Count: 2, TotalRecords: 5}, *resp.Pagination)

		var products []models.Product
		require.NoError(t, json.Unmarshal(resp.Data, &products))
		for _, p := range products {
			assert.GreaterOrEqual(t, p.Price, 500.0)
			assert.LessOrEqual(t, p.Price, 800.0)
		}
	}
	store.AssertNumberOfCalls(t, "List", 1)
}

func TestGetProduct(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	p := storedProduct("Blazer", 300)
	store.On("FindByID", mock.Anything, p.ID.Hex()).Return(p, nil).Once()
	store.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrInvalidID)
	missing := primitive.NewObjectID().Hex()
	store.On("FindByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	w := request(t, r, http.MethodGet, "/products/"+p.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(t, r, http.MethodGet, "/products/missing", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid ID format", decode(t, w).Message)

	w = request(t, r, http.MethodGet, "/products/"+missing, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", decode(t, w).Message)
}

func TestUpdateProductInvalidatesCache(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	p := storedProduct("Blazer", 300)
	id := p.ID.Hex()
	store.On("FindByID", mock.Anything, id).Return(p, nil)

	updated := *p
	updated.Price = 250
	store.On("Update", mock.Anything, id, mock.MatchedBy(func(in *models.ProductInput) bool {
		return in.Price != nil && *in.Price == 250 && in.Name == nil
	}), adminUser.ID).Return(&updated, nil).Once()

	request(t, r, http.MethodGet, "/products/"+id, "", nil)
	request(t, r, http.MethodGet, "/products/"+id, "", nil)
	store.AssertNumberOfCalls(t, "FindByID", 1)

	w := request(t, r, http.MethodPut, "/products/"+id, "admin", map[string]interface{}{"price": 250})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Product updated successfully", decode(t, w).Message)

	request(t, r, http.MethodGet, "/products/"+id, "", nil)
	store.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestProductCacheKeyIgnoresIDCase(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	p := storedProduct("Blazer", 300)
	id := p.ID.Hex()
	store.On("FindByID", mock.Anything, id).Return(p, nil)
	store.On("Archive", mock.Anything, id, adminUser.ID).Return(p, nil).Once()

	w := request(t, r, http.MethodGet, "/products/"+strings.ToUpper(id), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	request(t, r, http.MethodGet, "/products/"+id, "", nil)
	store.AssertNumberOfCalls(t, "FindByID", 1)

	w = request(t, r, http.MethodDelete, "/products/"+id, "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	request(t, r, http.MethodGet, "/products/"+strings.ToUpper(id), "", nil)
	store.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestDeleteProductArchives(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	p := storedProduct("Tie", 20)
	p.Status = models.StatusArchived
	store.On("Archive", mock.Anything, p.ID.Hex(), adminUser.ID).Return(p, nil).Once()

	w := request(t, r, http.MethodDelete, "/products/"+p.ID.Hex(), "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, models.StatusArchived, got.Status)
}

func TestUpdateInventory(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)
	id := primitive.NewObjectID().Hex()

	w := request(t, r, http.MethodPatch, "/products/"+id+"/inventory", "admin", map[string]interface{}{"operation": "add"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Valid quantity is required", decode(t, w).Message)

	w = request(t, r, http.MethodPatch, "/products/"+id+"/inventory", "admin", map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = request(t, r, http.MethodPatch, "/products/"+id+"/inventory", "admin", map[string]interface{}{"quantity": 1, "operation": "multiply"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	emptied := storedProduct("Shirt", 60)
	emptied.Inventory.Quantity = 0
	store.On("UpdateInventory", mock.Anything, id, 0, models.InventorySet).Return(emptied, nil).Once()

	w = request(t, r, http.MethodPatch, "/products/"+id+"/inventory", "admin", map[string]interface{}{"quantity": 0, "operation": "set"})
	require.Equal(t, http.StatusOK, w.Code)

	var product map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &product))
	assert.Equal(t, "out-of-stock", product["stockStatus"])
	store.AssertExpectations(t)
}

func TestSearchProducts(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	store.On("Search", mock.Anything, "navy suit", 2, 5).
		Return(repository.NewPage([]models.Product{*storedProduct("Navy Suit", 400)}, 2, 5, 6), nil).Once()

	w := request(t, r, http.MethodGet, "/products/search/navy%20suit?page=2&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, Pagination{Current: 2, Total: 2, Count: 1, TotalRecords: 6}, *resp.Pagination)
}

func TestInternalErrorsHiddenInProduction(t *testing.T) {
	for _, expose := range []bool{false, true} {
		store := new(MockProductStore)
		r := setupProductRouter(t, store, expose)
		store.On("List", mock.Anything, mock.Anything).
			Return(repository.Page[models.Product]{}, errors.New("connection reset")).Once()

		w := request(t, r, http.MethodGet, "/products", "", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "Error fetching products", resp.Message)
		if expose {
			assert.Equal(t, "connection reset", resp.Error)
		} else {
			assert.Empty(t, resp.Error)
		}
	}
}

func TestExportProducts(t *testing.T) {
	store := new(MockProductStore)
	r := setupProductRouter(t, store, false)

	p := storedProduct("Navy Suit", 400)
	p.SKU = "NS-1"
	p.ComparePrice = PtrTo(500.0)
	draft := storedProduct("Unreleased", 10)
	draft.Status = models.StatusDraft
	store.On("All", mock.Anything).Return([]models.Product{*p, *draft}, nil).Once()

	w := request(t, r, http.MethodGet, "/products/export", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=products-")

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU", rows[0].Cells[1].Value)
	assert.Equal(t, p.ID.Hex(), rows[1].Cells[0].Value)
	assert.Equal(t, "NS-1", rows[1].Cells[1].Value)
	assert.Equal(t, "in-stock", rows[1].Cells[10].Value)
	assert.Equal(t, "draft", rows[2].Cells[5].Value)
}
