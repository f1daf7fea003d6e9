package models

// ProductInput is the request body of product create and update. Absent
// fields are nil and leave the target untouched.
type ProductInput struct {
	Name             *string         `json:"name"`
	Description      *string         `json:"description"`
	ShortDescription *string         `json:"shortDescription"`
	Price            *float64        `json:"price"`
	ComparePrice     *float64        `json:"comparePrice"`
	CostPrice        *float64        `json:"costPrice"`
	SKU              *string         `json:"sku"`
	Category         *string         `json:"category"`
	Subcategory      *string         `json:"subcategory"`
	Tags             []string        `json:"tags"`
	Images           []ProductImage  `json:"images"`
	Inventory        *InventoryInput `json:"inventory"`
	Dimensions       *Dimensions     `json:"dimensions"`
	SEO              *SEO            `json:"seo"`
	Status           *ProductStatus  `json:"status"`
	Featured         *bool           `json:"featured"`
}

type InventoryInput struct {
	Quantity          *int  `json:"quantity"`
	TrackQuantity     *bool `json:"trackQuantity"`
	AllowBackorder    *bool `json:"allowBackorder"`
	LowStockThreshold *int  `json:"lowStockThreshold"`
}

// RequireCreateFields reports the fields a new product cannot be created without.
func (in *ProductInput) RequireCreateFields() error {
	verr := &ValidationError{}
	if in.Name == nil {
		verr.Add("name", "Product name is required")
	}
	if in.Description == nil {
		verr.Add("description", "Product description is required")
	}
	if in.Price == nil {
		verr.Add("price", "Price is required")
	}
	if in.Category == nil {
		verr.Add("category", "Category is required")
	}
	return verr.orNil()
}

// Apply merges the provided fields onto p.
func (in *ProductInput) Apply(p *Product) {
	setIf(&p.Name, in.Name)
	setIf(&p.Description, in.Description)
	setIf(&p.ShortDescription, in.ShortDescription)
	setIf(&p.Price, in.Price)
	setIf(&p.SKU, in.SKU)
	setIf(&p.Category, in.Category)
	setIf(&p.Subcategory, in.Subcategory)
	setIf(&p.Status, in.Status)
	setIf(&p.Featured, in.Featured)
	if in.ComparePrice != nil {
		p.ComparePrice = in.ComparePrice
	}
	if in.CostPrice != nil {
		p.CostPrice = in.CostPrice
	}
	if in.Tags != nil {
		p.Tags = in.Tags
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Dimensions != nil {
		p.Dimensions = in.Dimensions
	}
	if in.SEO != nil {
		p.SEO = in.SEO
	}
	if inv := in.Inventory; inv != nil {
		setIf(&p.Inventory.Quantity, inv.Quantity)
		setIf(&p.Inventory.TrackQuantity, inv.TrackQuantity)
		setIf(&p.Inventory.AllowBackorder, inv.AllowBackorder)
		setIf(&p.Inventory.LowStockThreshold, inv.LowStockThreshold)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
