package api

import (
	"context" // Passthrough calls
	"time"    // Token lifetime

	"shop_system/internal/authclient" // Auth service client
	"shop_system/internal/middleware" // Custom middleware
	"shop_system/internal/store"      // Repositories

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// AuthDeps are the collaborators of the auth service routes
type AuthDeps struct {
	Users        *store.UserStore             // Identity store
	Redis        *redis.Client                // List cache, nil disables caching
	JWTSecret    string                       // Token signing secret
	TokenTTL     time.Duration                // Token lifetime
	LoginLimiter *middleware.LoginRateLimiter // Login throttling, nil disables it
	CORSOrigins  []string                     // Allowed origins, empty allows all
}

// AuthService is what the shop service needs from the auth service
type AuthService interface {
	authclient.Verifier
	Fetch(ctx context.Context, authorization string) (string, []byte, error)
}

// ShopDeps are the collaborators of the shop service routes
type ShopDeps struct {
	Shops           *store.ShopStore // Shop/item store
	Auth            AuthService      // Authorization oracle
	Redis           *redis.Client    // List cache, nil disables caching
	AuthServiceHost string           // Echoed by /shop/test
	CORSOrigins     []string         // Allowed origins, empty allows all
}

// NewAuthRouter wires the auth service routes
func NewAuthRouter(d AuthDeps) *gin.Engine {
	r := newEngine("auth", d.CORSOrigins)
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Users, d.Redis))                                        // Registration endpoint
	auth.POST("/login", d.LoginLimiter.Middleware(), LoginHandler(d.Users, d.JWTSecret, d.TokenTTL)) // Login endpoint
	auth.GET("/verify", middleware.JWTAuthMiddleware(d.JWTSecret), VerifyHandler(d.Users))           // Verification oracle
	auth.GET("/users", ListUsersHandler(d.Users, d.Redis))                                           // List users endpoint
	return r
}

// NewShopRouter wires the shop service routes
func NewShopRouter(d ShopDeps) *gin.Engine {
	r := newEngine("shop", d.CORSOrigins)
	shop := r.Group("/shop")
	// Public routes
	shop.GET("", ListShopsHandler(d.Shops, d.Redis))                  // List shops endpoint
	shop.GET("/items", ListItemsHandler(d.Shops, d.Redis))            // List items endpoint
	shop.GET("/item/:item_id/variants", ListVariantsHandler(d.Shops)) // List variants endpoint
	shop.GET("/verify", VerifyPassthroughHandler(d.Auth))             // Auth verify passthrough
	shop.GET("/test", ConfigEchoHandler(d.AuthServiceHost))           // Configuration echo
	// Shops, superuser only
	shop.POST("/create", middleware.Authorize(d.Auth, createShopPolicy), CreateShopHandler(d.Shops, d.Redis))
	shop.PUT("/update/:shop_id", middleware.Authorize(d.Auth, updateShopPolicy), UpdateShopHandler(d.Shops, d.Redis))
	// Items and variants, superuser or owning shopkeeper
	shop.POST("/:shop_id/item/create", middleware.Authorize(d.Auth, createItemPolicy(d.Shops)), CreateItemHandler(d.Shops, d.Redis))
	shop.PUT("/item/update/:item_id", middleware.Authorize(d.Auth, updateItemPolicy(d.Shops)), UpdateItemHandler(d.Shops, d.Redis))
	shop.POST("/item/:item_id/variant/create", middleware.Authorize(d.Auth, createVariantPolicy(d.Shops)), CreateVariantHandler(d.Shops))
	return r
}

// newEngine builds a gin engine with the middleware shared by both services
func newEngine(service string, origins []string) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),                    // Turn panics into 500
		middleware.RequestID(),            // Request id propagation
		middleware.RequestLogger(service), // Access log
		corsMiddleware(origins),           // CORS
	)
	return r
}

// corsMiddleware allows the given origins, or every origin when none are configured
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization", authclient.RequestIDHeader)
	cfg.AddExposeHeaders(authclient.RequestIDHeader)
	return cors.New(cfg)
}
