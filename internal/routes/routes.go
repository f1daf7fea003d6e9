package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"suits-world/internal/handlers"
	"suits-world/internal/middleware"
	"suits-world/internal/models"
)

// Dependencies are the constructed handlers the API is assembled from.
type Dependencies struct {
	Products      *handlers.ProductHandler
	Users         *handlers.UserHandler
	Uploads       *handlers.UploadHandler
	Health        *handlers.HealthHandler
	Auth          middleware.Authenticator
	UploadTimeout time.Duration
}

// NewRouter builds the engine with logging, recovery and CORS in front of the API.
func NewRouter(allowedOrigins []string, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	RegisterRoutes(router, deps)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Response{Success: false, Message: "API endpoint not found"})
	})
	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = allowedOrigins
	return cfg
}

func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	authn := middleware.RequireAuth(deps.Auth)
	admin := middleware.RequireRole(models.RoleAdmin)

	router.GET("/health", deps.Health.Health)

	api := router.Group("/api")
	api.GET("/health", deps.Health.Health)

	products := api.Group("/products")
	{
		products.GET("", deps.Products.ListProducts)
		products.GET("/search/:query", deps.Products.SearchProducts)
		products.GET("/export", authn, admin, deps.Products.ExportProducts)
		products.GET("/:id", deps.Products.GetProduct)
		products.POST("", authn, admin, deps.Products.CreateProduct)
		products.PUT("/:id", authn, admin, deps.Products.UpdateProduct)
		products.DELETE("/:id", authn, admin, deps.Products.DeleteProduct)
		products.PATCH("/:id/inventory", authn, admin, deps.Products.UpdateInventory)
	}

	users := api.Group("/users")
	{
		users.POST("", deps.Users.Create)
		users.GET("", authn, deps.Users.Get)
		users.GET("/:id", authn, deps.Users.GetByID)
		users.PUT("/:id", authn, deps.Users.Update)
		users.DELETE("/:id", authn, deps.Users.Delete)
	}

	uploads := api.Group("/upload", middleware.Timeout(deps.UploadTimeout))
	{
		uploads.POST("/images", authn, admin, deps.Uploads.UploadImages)
		uploads.POST("/base64", authn, admin, deps.Uploads.UploadBase64)
		uploads.GET("/images/:filename", deps.Uploads.GetImage)
		uploads.DELETE("/images/:filename", authn, admin, deps.Uploads.DeleteImage)
	}
}
