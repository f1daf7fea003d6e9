package main

import (
	"context"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"suits-world/internal/auth"
	"suits-world/internal/config"
	"suits-world/internal/database"
	"suits-world/internal/models"
	"suits-world/internal/repository"
)

type seedUser struct {
	username, email, password string
	role                      models.Role
	first, last, bio          string
}

var seedUsers = []seedUser{
	{"admin", "admin@suits-world.com", "admin123", models.RoleAdmin, "Admin", "User", "Administrator of Suits World"},
	{"johndoe", "john@example.com", "password123", models.RoleUser, "John", "Doe", "Business professional and loyal customer"},
	{"sarahjones", "sarah@example.com", "password123", models.RoleUser, "Sarah", "Jones", "Corporate executive with excellent style"},
	{"mikewilson", "mike@example.com", "password123", models.RoleUser, "Mike", "Wilson", "Wedding planner and formal wear enthusiast"},
}

type seedProduct struct {
	name, sku, category, subcategory string
	description, short               string
	price, compare, cost             float64
	quantity, lowStock               int
	weight                           float64
	featured                         bool
	tags                             []string
}

var catalogue = []seedProduct{
	{"Executive Navy Business Suit", "SW-ENS-001", "mens", "corporate-suits",
		"A sophisticated navy blue business suit crafted from premium wool. Perfect for board meetings, presentations, and formal business occasions.",
		"Premium navy wool business suit with modern slim fit", 599, 799, 299, 24, 5, 2.5, true,
		[]string{"business", "navy", "wool", "slim-fit", "executive"}},
	{"Classic Charcoal Three-Piece", "SW-CCT-002", "mens", "three-piece-suits",
		"Timeless charcoal grey three-piece suit combining classic styling with contemporary tailoring. Includes jacket, trousers and waistcoat.",
		"Charcoal three-piece with waistcoat", 899, 1199, 449, 15, 3, 3.2, true,
		[]string{"three-piece", "charcoal", "classic", "waistcoat"}},
	{"Wedding Day Premium Tuxedo", "SW-WPT-003", "mens", "wedding-suits",
		"Black peak-lapel tuxedo with satin trim, cut for the groom and his party.",
		"Peak-lapel tuxedo with satin trim", 1299, 1599, 599, 8, 2, 2.8, true,
		[]string{"wedding", "tuxedo", "black", "formal"}},
	{"Midnight Blue Prom Suit", "SW-MBP-004", "mens", "prom-suits",
		"Midnight blue suit with a slim silhouette and a subtle sheen for prom night.",
		"Slim midnight blue prom suit", 449, 599, 199, 30, 6, 2.3, false,
		[]string{"prom", "midnight-blue", "slim-fit"}},
	{"Classic Navy Blazer", "SW-CNB-005", "mens", "blazers",
		"Versatile navy blazer with brass buttons that pairs with chinos or grey trousers.",
		"Navy blazer with brass buttons", 349, 449, 149, 40, 8, 1.4, false,
		[]string{"blazer", "navy", "smart-casual"}},
	{"Premium Dress Trousers - Charcoal", "SW-PDT-006", "mens", "formal-trousers",
		"Flat-front charcoal dress trousers in a wool blend with a tailored leg.",
		"Charcoal wool-blend dress trousers", 199, 0, 79, 60, 10, 0.8, false,
		[]string{"trousers", "charcoal", "wool-blend"}},
	{"Executive Business Pantsuit", "SW-EBP-007", "womens", "business-suits",
		"Tailored pantsuit with a single-button jacket and straight-leg trousers for the boardroom.",
		"Single-button tailored pantsuit", 649, 849, 289, 18, 4, 2.0, true,
		[]string{"pantsuit", "business", "tailored"}},
	{"Elegant Cocktail Suit", "SW-ECS-008", "womens", "cocktail-suits",
		"Cropped jacket and pencil skirt in ivory crepe for evening events.",
		"Ivory crepe cocktail suit", 549, 0, 239, 12, 3, 1.6, false,
		[]string{"cocktail", "ivory", "evening"}},
	{"Boys' First Communion Suit", "SW-BFC-009", "childrens", "boys-suits",
		"White three-piece suit for boys with adjustable waistband.",
		"White communion suit for boys", 199, 249, 79, 25, 5, 1.1, false,
		[]string{"boys", "communion", "white"}},
	{"Girls' Pink Party Dress Suit", "SW-GPP-010", "childrens", "girls-suits",
		"Pink jacket and dress set for parties and family celebrations.",
		"Pink party dress suit for girls", 179, 0, 69, 20, 5, 0.9, false,
		[]string{"girls", "party", "pink"}},
	{"Premium Silk Tie Collection", "SW-PST-011", "mens", "ties-accessories",
		"Hand-finished pure silk ties in classic stripes and solids.",
		"Pure silk ties", 89, 119, 29, 100, 15, 0.1, false,
		[]string{"tie", "silk", "accessories"}},
	{"Leather Oxford Dress Shoes", "SW-LOD-012", "mens", "formal-shoes",
		"Classic black leather Oxford dress shoes for business and formal occasions.",
		"Black leather Oxfords", 299, 379, 129, 35, 8, 1.8, false,
		[]string{"shoes", "oxford", "leather"}},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer db.Disconnect(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}

	usersColl := db.Collection(database.UsersCollection)
	productsColl := db.Collection(database.ProductsCollection)
	for _, coll := range []string{database.UsersCollection, database.ProductsCollection} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("❌ clear %s: %v", coll, err)
		}
		log.Println("🧹 Cleared", coll)
	}

	users := repository.NewUserRepository(usersColl)
	accounts := auth.NewService(users, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.BcryptCost)

	var adminID primitive.ObjectID
	for _, su := range seedUsers {
		hash, err := accounts.HashPassword(su.password)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		user := &models.User{
			Username:     su.username,
			Email:        su.email,
			PasswordHash: hash,
			Role:         su.role,
			Profile:      models.Profile{FirstName: su.first, LastName: su.last, Bio: su.bio}.WithDefaults(),
			IsActive:     true,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("❌ create user %s: %v", su.username, err)
		}
		if user.IsAdmin() {
			adminID = user.ID
		}
	}
	log.Printf("✅ Created %d users", len(seedUsers))

	products := repository.NewProductRepository(productsColl)
	for _, sp := range catalogue {
		if err := products.Create(ctx, sp.product(adminID)); err != nil {
			log.Fatalf("❌ create product %s: %v", sp.sku, err)
		}
	}
	log.Printf("✅ Created %d products", len(catalogue))

	log.Println("🔑 Admin login: admin@suits-world.com / admin123")
	log.Println("🔑 Customer login: john@example.com / password123")
}

func (sp seedProduct) product(createdBy primitive.ObjectID) *models.Product {
	p := models.NewProduct()
	p.Name = sp.name
	p.Description = sp.description
	p.ShortDescription = sp.short
	p.Price = sp.price
	if sp.compare > 0 {
		p.ComparePrice = &sp.compare
	}
	p.CostPrice = &sp.cost
	p.SKU = sp.sku
	p.Category = sp.category
	p.Subcategory = sp.subcategory
	p.Tags = sp.tags
	p.Images = []models.ProductImage{{
		URL: "/images/products/" + strings.ToLower(sp.sku) + ".png",
		Alt: sp.name,
	}}
	p.Inventory.Quantity = sp.quantity
	p.Inventory.LowStockThreshold = sp.lowStock
	p.Dimensions = &models.Dimensions{Weight: &sp.weight}
	p.Status = models.StatusActive
	p.Featured = sp.featured
	p.CreatedBy = createdBy
	return p
}
