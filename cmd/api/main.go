package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"suits-world/internal/auth"
	"suits-world/internal/cache"
	"suits-world/internal/config"
	"suits-world/internal/database"
	"suits-world/internal/handlers"
	"suits-world/internal/repository"
	"suits-world/internal/routes"
	"suits-world/internal/upload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatalf("❌ %v", err)
	}

	store, err := newImageStore(cfg, db)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	productCache := cache.New(cfg.CacheTTL)
	products := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	users := repository.NewUserRepository(db.Collection(database.UsersCollection))
	accounts := auth.NewService(users, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), cfg.Auth.BcryptCost)
	images := upload.NewService(store, upload.Limits{
		MaxBytes: cfg.Upload.MaxBytes,
		MaxFiles: cfg.Upload.MaxFiles,
	}, cfg.PublicBaseURL)

	exposeErrors := !cfg.IsProduction()
	router := routes.NewRouter(cfg.CORSAllowedOrigins, routes.Dependencies{
		Products:      handlers.NewProductHandler(products, productCache, exposeErrors),
		Users:         handlers.NewUserHandler(accounts, users, exposeErrors),
		Uploads:       handlers.NewUploadHandler(images, cfg.Upload.MaxBytes*int64(cfg.Upload.MaxFiles)+1<<20, exposeErrors),
		Health:        handlers.NewHealthHandler(db, cfg.AppEnv),
		Auth:          accounts,
		UploadTimeout: cfg.Upload.Timeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Upload.Timeout + 10*time.Second,
		WriteTimeout:      cfg.Upload.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server running on port %s (%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server forced to shutdown: %v", err)
	}
	productCache.Close()
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Printf("⚠️ Error disconnecting MongoDB: %v", err)
	}
	log.Println("👋 Server exited")
}

func newImageStore(cfg *config.Config, db *database.Mongo) (upload.ImageStore, error) {
	if cfg.Upload.Driver == config.UploadDriverGridFS {
		log.Println("🗄️ Storing uploads in GridFS bucket", database.UploadsBucket)
		return upload.NewGridFSStore(db.DB, database.UploadsBucket), nil
	}
	log.Println("📁 Storing uploads in", cfg.Upload.Dir)
	return upload.NewDiskStore(cfg.Upload.Dir)
}
