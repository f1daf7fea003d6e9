package repository

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/models"
)

func TestParseProductQuery_Defaults(t *testing.T) {
	q := ParseProductQuery(url.Values{})

	assert.Equal(t, models.StatusActive, q.Status)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, bson.M{"status": models.StatusActive}, q.Filter())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, q.Sort())
	assert.Equal(t, int64(0), q.Skip())
}

func TestParseProductQuery_PaginationEdgeCases(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"0", "0", 1, 10},
		{"-3", "-1", 1, 10},
		{"abc", "xyz", 1, 10},
		{"3", "25", 3, 25},
		{"2", "1000", 2, 100},
	}
	for _, tt := range tests {
		q := ParseProductQuery(url.Values{"page": {tt.page}, "limit": {tt.limit}})
		assert.Equal(t, tt.wantPage, q.Page, "page=%s", tt.page)
		assert.Equal(t, tt.wantLimit, q.Limit, "limit=%s", tt.limit)
	}

	q := ParseProductQuery(url.Values{"page": {"3"}, "limit": {"25"}})
	assert.Equal(t, int64(50), q.Skip())
}

func TestProductQuery_FilterConjoinsEverything(t *testing.T) {
	q := ParseProductQuery(url.Values{
		"status":      {"draft"},
		"category":    {"Mens"},
		"subcategory": {"wedding-suits"},
		"featured":    {"true"},
		"minPrice":    {"500"},
		"maxPrice":    {"800"},
		"search":      {"navy wool"},
	})

	f := q.Filter()
	assert.Equal(t, models.StatusDraft, f["status"])
	assert.Equal(t, primitive.Regex{Pattern: "Mens", Options: "i"}, f["category"])
	assert.Equal(t, primitive.Regex{Pattern: "wedding-suits", Options: "i"}, f["subcategory"])
	assert.Equal(t, true, f["featured"])
	assert.Equal(t, bson.M{"$gte": 500.0, "$lte": 800.0}, f["price"])
	assert.Equal(t, bson.M{"$search": "navy wool"}, f["$text"])
}

func TestProductQuery_MalformedNumbersIgnored(t *testing.T) {
	q := ParseProductQuery(url.Values{
		"minPrice": {"cheap"},
		"maxPrice": {"NaN"},
		"featured": {"maybe"},
	})

	f := q.Filter()
	assert.NotContains(t, f, "price")
	assert.NotContains(t, f, "featured")
}

func TestProductQuery_OnlyMinPrice(t *testing.T) {
	f := ParseProductQuery(url.Values{"minPrice": {"99.5"}}).Filter()
	assert.Equal(t, bson.M{"$gte": 99.5}, f["price"])
}

func TestProductQuery_CategoryIsEscaped(t *testing.T) {
	f := ParseProductQuery(url.Values{"category": {"suits (3-piece)"}}).Filter()
	re, ok := f["category"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `suits \(3-piece\)`, re.Pattern)
}

func TestProductQuery_Sort(t *testing.T) {
	tests := []struct {
		sortBy, order string
		want          bson.D
	}{
		{"price", "asc", bson.D{{Key: "price", Value: 1}}},
		{"price", "desc", bson.D{{Key: "price", Value: -1}}},
		{"name", "", bson.D{{Key: "name", Value: 1}}},
		{"password", "desc", bson.D{{Key: "createdAt", Value: -1}}},
		{"", "asc", bson.D{{Key: "createdAt", Value: -1}}},
	}
	for _, tt := range tests {
		q := ParseProductQuery(url.Values{"sortBy": {tt.sortBy}, "sortOrder": {tt.order}})
		assert.Equal(t, tt.want, q.Sort(), "sortBy=%q sortOrder=%q", tt.sortBy, tt.order)
	}
}

func TestProductQuery_CacheKeyIsOrderIndependent(t *testing.T) {
	a, err := url.ParseQuery("category=mens&page=2&minPrice=10")
	require.NoError(t, err)
	b, err := url.ParseQuery("minPrice=10&page=2&category=MENS")
	require.NoError(t, err)

	assert.Equal(t, ParseProductQuery(a).CacheKey(), ParseProductQuery(b).CacheKey())
	assert.NotEqual(t, ParseProductQuery(a).CacheKey(), ParseProductQuery(url.Values{}).CacheKey())
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		total     int64
		limit     int
		wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 7, 14},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.wantPages, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}

	p := NewPage([]int{1, 2, 3}, 2, 3, 7)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 3, p.ItemCount)
	assert.Equal(t, int64(7), p.TotalRecords)

	empty := NewPage[int](nil, 1, 10, 0)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.ItemCount)
}
