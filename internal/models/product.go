package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductStatus string

const (
	StatusDraft    ProductStatus = "draft"
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
	StatusArchived ProductStatus = "archived"
)

type StockStatus string

const (
	StockUnlimited  StockStatus = "unlimited"
	StockOutOfStock StockStatus = "out-of-stock"
	StockLow        StockStatus = "low-stock"
	StockIn         StockStatus = "in-stock"
)

const DefaultLowStockThreshold = 10

type ProductImage struct {
	URL       string `json:"url" bson:"url" validate:"required"`
	Alt       string `json:"alt" bson:"alt"`
	IsPrimary bool   `json:"isPrimary" bson:"isPrimary"`
}

type Inventory struct {
	Quantity          int  `json:"quantity" bson:"quantity" validate:"gte=0"`
	TrackQuantity     bool `json:"trackQuantity" bson:"trackQuantity"`
	AllowBackorder    bool `json:"allowBackorder" bson:"allowBackorder"`
	LowStockThreshold int  `json:"lowStockThreshold" bson:"lowStockThreshold" validate:"gte=0"`
}

type Dimensions struct {
	Weight *float64 `json:"weight,omitempty" bson:"weight,omitempty" validate:"omitempty,gte=0"`
	Length *float64 `json:"length,omitempty" bson:"length,omitempty" validate:"omitempty,gte=0"`
	Width  *float64 `json:"width,omitempty" bson:"width,omitempty" validate:"omitempty,gte=0"`
	Height *float64 `json:"height,omitempty" bson:"height,omitempty" validate:"omitempty,gte=0"`
}

type SEO struct {
	Title       string   `json:"title,omitempty" bson:"title,omitempty" validate:"max=60"`
	Description string   `json:"description,omitempty" bson:"description,omitempty" validate:"max=160"`
	Keywords    []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
}

// Product is the catalogue document. Stock status, discount and margin are
// derived on read and never stored.
type Product struct {
	ID               primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name             string              `json:"name" bson:"name" validate:"required,max=100"`
	Description      string              `json:"description" bson:"description" validate:"required,max=2000"`
	ShortDescription string              `json:"shortDescription,omitempty" bson:"shortDescription,omitempty" validate:"max=500"`
	Price            float64             `json:"price" bson:"price" validate:"gte=0"`
	ComparePrice     *float64            `json:"comparePrice,omitempty" bson:"comparePrice,omitempty" validate:"omitempty,gte=0"`
	CostPrice        *float64            `json:"costPrice,omitempty" bson:"costPrice,omitempty" validate:"omitempty,gte=0"`
	SKU              string              `json:"sku,omitempty" bson:"sku,omitempty"`
	Category         string              `json:"category" bson:"category" validate:"required"`
	Subcategory      string              `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Tags             []string            `json:"tags" bson:"tags"`
	Images           []ProductImage      `json:"images" bson:"images" validate:"dive"`
	Inventory        Inventory           `json:"inventory" bson:"inventory"`
	Dimensions       *Dimensions         `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	SEO              *SEO                `json:"seo,omitempty" bson:"seo,omitempty"`
	Status           ProductStatus       `json:"status" bson:"status" validate:"oneof=draft active inactive archived"`
	Featured         bool                `json:"featured" bson:"featured"`
	CreatedBy        primitive.ObjectID  `json:"createdBy" bson:"createdBy"`
	UpdatedBy        *primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// NewProduct returns a draft with the inventory defaults of a freshly created document.
func NewProduct() *Product {
	return &Product{
		Status: StatusDraft,
		Tags:   []string{},
		Images: []ProductImage{},
		Inventory: Inventory{
			TrackQuantity:     true,
			LowStockThreshold: DefaultLowStockThreshold,
		},
	}
}

func (p *Product) StockStatus() StockStatus {
	inv := p.Inventory
	switch {
	case !inv.TrackQuantity:
		return StockUnlimited
	case inv.Quantity <= 0:
		return StockOutOfStock
	case inv.Quantity <= inv.LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

func (p *Product) DiscountPercentage() int {
	if p.ComparePrice == nil || *p.ComparePrice <= p.Price {
		return 0
	}
	cp := *p.ComparePrice
	return roundHalfUp((cp - p.Price) / cp * 100)
}

func (p *Product) ProfitMargin() int {
	if p.CostPrice == nil || *p.CostPrice <= 0 || p.Price <= 0 {
		return 0
	}
	return roundHalfUp((p.Price - *p.CostPrice) / p.Price * 100)
}

// IsAvailable reports whether requested units can be sold right now.
func (p *Product) IsAvailable(requested int) bool {
	if !p.Inventory.TrackQuantity {
		return true
	}
	if p.Status != StatusActive {
		return false
	}
	if p.Inventory.Quantity >= requested {
		return true
	}
	return p.Inventory.AllowBackorder
}

// NormalizeImages leaves exactly one primary image in a non-empty list: the
// first flagged one, or the first image when none is flagged.
func (p *Product) NormalizeImages() {
	if len(p.Images) == 0 {
		return
	}
	primary := -1
	for i := range p.Images {
		if p.Images[i].IsPrimary && primary < 0 {
			primary = i
		}
		p.Images[i].IsPrimary = false
	}
	if primary < 0 {
		primary = 0
	}
	p.Images[primary].IsPrimary = true
}

// Normalize trims text fields, canonicalises the SKU and fixes the primary
// image. Repositories call it before every write.
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	p.Subcategory = strings.TrimSpace(p.Subcategory)
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	p.Tags = trimAll(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []ProductImage{}
	}
	if p.SEO != nil {
		p.SEO.Keywords = trimAll(p.SEO.Keywords)
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	p.NormalizeImages()
}

func (p *Product) Validate() error {
	verr := &ValidationError{}
	validateStruct(p, verr)
	if p.CreatedBy.IsZero() {
		verr.Add("createdBy", "createdBy is required")
	}
	return verr.orNil()
}

func (p Product) MarshalJSON() ([]byte, error) {
	type document Product
	return json.Marshal(struct {
		document
		ID                 string      `json:"id"`
		StockStatus        StockStatus `json:"stockStatus"`
		DiscountPercentage int         `json:"discountPercentage"`
		ProfitMargin       int         `json:"profitMargin"`
	}{
		document:           document(p),
		ID:                 p.ID.Hex(),
		StockStatus:        p.StockStatus(),
		DiscountPercentage: p.DiscountPercentage(),
		ProfitMargin:       p.ProfitMargin(),
	})
}

type InventoryOperation string

const (
	InventorySet      InventoryOperation = "set"
	InventoryAdd      InventoryOperation = "add"
	InventorySubtract InventoryOperation = "subtract"
)

// ParseInventoryOperation maps the request value to an operation; empty means set.
func ParseInventoryOperation(s string) (InventoryOperation, error) {
	switch op := InventoryOperation(strings.ToLower(strings.TrimSpace(s))); op {
	case "":
		return InventorySet, nil
	case InventorySet, InventoryAdd, InventorySubtract:
		return op, nil
	default:
		return "", fmt.Errorf("unknown inventory operation %q", s)
	}
}

// ApplyInventory changes the stored quantity. The result is never negative.
func (p *Product) ApplyInventory(quantity int, op InventoryOperation) {
	inv := &p.Inventory
	switch op {
	case InventoryAdd:
		inv.Quantity += quantity
	case InventorySubtract:
		inv.Quantity = max(0, inv.Quantity-quantity)
	default:
		inv.Quantity = max(0, quantity)
	}
	if inv.Quantity < 0 {
		inv.Quantity = 0
	}
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
