package repository

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	defaultSortField = "createdAt"
)

var sortableFields = map[string]bool{
	"createdAt":          true,
	"updatedAt":          true,
	"name":               true,
	"price":              true,
	"featured":           true,
	"category":           true,
	"inventory.quantity": true,
}

// ProductQuery is a parsed product listing request.
type ProductQuery struct {
	Status      models.ProductStatus
	Category    string
	Subcategory string
	Featured    *bool
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	SortBy      string
	SortDesc    bool
	Page        int
	Limit       int
}

// ParseProductQuery reads listing parameters. Malformed numbers and booleans
// are ignored rather than rejected.
func ParseProductQuery(values url.Values) ProductQuery {
	q := ProductQuery{
		Status:      models.ProductStatus(strings.TrimSpace(values.Get("status"))),
		Category:    strings.TrimSpace(values.Get("category")),
		Subcategory: strings.TrimSpace(values.Get("subcategory")),
		Search:      strings.TrimSpace(values.Get("search")),
		SortBy:      strings.TrimSpace(values.Get("sortBy")),
		SortDesc:    values.Get("sortOrder") == "desc",
	}
	q.Page, q.Limit = ParsePagination(values)

	if v := values.Get("featured"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q.Featured = &b
		}
	}
	q.MinPrice = parsePrice(values.Get("minPrice"))
	q.MaxPrice = parsePrice(values.Get("maxPrice"))

	return q.normalized()
}

// ParsePagination returns a 1-indexed page and a limit in [1, MaxLimit].
func ParsePagination(values url.Values) (page, limit int) {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(values.Get("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (q ProductQuery) normalized() ProductQuery {
	if q.Status == "" {
		q.Status = models.StatusActive
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if !sortableFields[q.SortBy] {
		q.SortBy = ""
		q.SortDesc = false
	}
	return q
}

// Filter is the conjunction of every provided criterion.
func (q ProductQuery) Filter() bson.M {
	q = q.normalized()
	filter := bson.M{"status": q.Status}

	if q.Category != "" {
		filter["category"] = containsFold(q.Category)
	}
	if q.Subcategory != "" {
		filter["subcategory"] = containsFold(q.Subcategory)
	}
	if q.Featured != nil {
		filter["featured"] = *q.Featured
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}
	return filter
}

func (q ProductQuery) Sort() bson.D {
	q = q.normalized()
	if q.SortBy == "" {
		return bson.D{{Key: defaultSortField, Value: -1}}
	}
	order := 1
	if q.SortDesc {
		order = -1
	}
	return bson.D{{Key: q.SortBy, Value: order}}
}

func (q ProductQuery) Skip() int64 {
	q = q.normalized()
	return int64((q.Page - 1) * q.Limit)
}

// CacheKey is a canonical representation of q, stable across parameter order.
func (q ProductQuery) CacheKey() string {
	q = q.normalized()
	parts := []string{
		"status=" + string(q.Status),
		"category=" + strings.ToLower(q.Category),
		"subcategory=" + strings.ToLower(q.Subcategory),
		"search=" + q.Search,
		fmt.Sprintf("sort=%s:%t", q.SortBy, q.SortDesc),
		fmt.Sprintf("page=%d", q.Page),
		fmt.Sprintf("limit=%d", q.Limit),
	}
	if q.Featured != nil {
		parts = append(parts, fmt.Sprintf("featured=%t", *q.Featured))
	}
	if q.MinPrice != nil {
		parts = append(parts, fmt.Sprintf("min=%g", *q.MinPrice))
	}
	if q.MaxPrice != nil {
		parts = append(parts, fmt.Sprintf("max=%g", *q.MaxPrice))
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// Page is one window of a paginated listing.
type Page[T any] struct {
	Items        []T
	CurrentPage  int
	TotalPages   int
	ItemCount    int
	TotalRecords int64
}

func NewPage[T any](items []T, page, limit int, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:        items,
		CurrentPage:  page,
		TotalPages:   TotalPages(total, limit),
		ItemCount:    len(items),
		TotalRecords: total,
	}
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
