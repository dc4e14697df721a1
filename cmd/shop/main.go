package main

import (
	"context"   // Process lifetime
	"os"        // Signals
	"os/signal" // Signal handling
	"syscall"   // SIGTERM

	"shop_system/internal/api"        // Route wiring
	"shop_system/internal/authclient" // Auth service client
	"shop_system/internal/config"     // Configuration
	"shop_system/internal/db"         // Database connection
	"shop_system/internal/server"     // Process plumbing
	"shop_system/internal/store"      // Repositories

	"github.com/gin-gonic/gin" // Gin web framework
)

// Main function to set up and run the shop service
func main() {
	cfg := config.LoadConfig()                   // Load configuration
	log := server.SetupLogger(cfg, "shop")       // Setup logger
	if err := cfg.Validate("shop"); err != nil { // Refuse to start half configured
		log.Fatalf("invalid configuration: %v", err)
	}
	log.WithField("config", cfg.String()).Info("Starting shop service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database and create the shop tables
	gdb, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb, db.ShopModels()...); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// Optional Redis list cache
	rdb, err := server.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	auth := authclient.New(cfg.AuthServiceHost, nil) // No timeout, no retry
	log.WithField("verify_url", auth.VerifyURL()).Info("Delegating authorization")
	r := api.NewShopRouter(api.ShopDeps{
		Shops:           store.NewShopStore(gdb), // Shop/item store
		Auth:            auth,                    // Authorization oracle
		Redis:           rdb,                     // List cache
		AuthServiceHost: cfg.AuthServiceHost,     // Echoed by /shop/test
		CORSOrigins:     cfg.CORSOrigins,         // Allowed origins
	})
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.Fatalf("failed to set trusted proxies: %v", err)
	}

	if err := server.Run(ctx, ":"+cfg.AppPort, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Info("Shop service stopped")
}
