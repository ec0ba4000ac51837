package routes

import (
	"os"
	"strings"

	"vetra_back_end/internal/handlers"
	"vetra_back_end/internal/handlers/admin"
	"vetra_back_end/internal/handlers/invoice"
	"vetra_back_end/internal/handlers/product"
	"vetra_back_end/internal/handlers/user"
	"vetra_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes branche toutes les routes de l'API
func RegisterRoutes(r *gin.Engine) {
	allowed := os.Getenv("CORS_ORIGINS")
	if allowed == "" {
		allowed = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(allowed, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")

	// --- Authentification ---
	auth := api.Group("/auth")
	auth.Use(middleware.CartSession()) // le login a besoin du jeton pour la fusion
	{
		auth.POST("/register", user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
	}

	// --- Catalogue (public) ---
	products := api.Group("/products")
	{
		products.GET("", product.GetAllProducts)
		products.GET("/search", product.SearchProducts)
		products.GET("/:id", product.GetProductByID)
	}

	// --- Panier (invité ou connecté) ---
	cart := api.Group("/cart")
	cart.Use(middleware.CartSession(), middleware.OptionalAuth())
	{
		cart.GET("", handlers.GetCart)
		cart.GET("/ws", handlers.CartWebSocket)
		cart.POST("/add", handlers.AddToCart)
		cart.POST("/remove", handlers.RemoveFromCart)
		cart.POST("/increase", handlers.IncreaseQuantity)
		cart.POST("/decrease", handlers.DecreaseQuantity)
		cart.POST("/clear", handlers.ClearCart)
	}

	// --- Checkout et commandes (connecté uniquement) ---
	orders := api.Group("")
	orders.Use(middleware.CartSession(), middleware.AuthRequired())
	{
		orders.POST("/checkout", handlers.Checkout)
		orders.GET("/orders", handlers.GetMyOrders)
		orders.GET("/orders/:id", handlers.GetOrderByID)
		orders.GET("/orders/:id/invoice", invoice.DownloadInvoice)
		orders.POST("/orders/:id/invoice/send", invoice.EmailInvoice)
	}

	// --- Administration ---
	adm := api.Group("/admin")
	adm.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adm.GET("/orders", admin.ListOrders)
		adm.GET("/orders/stats", admin.OrderStats)
		adm.POST("/orders/:id/approve", admin.ApproveOrder)
		adm.POST("/orders/:id/ship", admin.ShipOrder)
		adm.POST("/orders/:id/deliver", admin.DeliverOrder)
		adm.POST("/orders/:id/cancel", admin.CancelOrder)

		adm.POST("/products", product.CreateProduct)
		adm.PUT("/products/:id", product.UpdateProduct)
		adm.DELETE("/products/:id", product.DeleteProduct)
		adm.POST("/products/upload", product.UploadProductImage)
	}
}
