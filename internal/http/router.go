// README: HTTP router registration; groups routes by audience and role.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/auth"
	"agrilink/internal/http/handlers"
	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/assignment"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/settings"
	"agrilink/internal/modules/user"
)

type RouterDeps struct {
	Users          *user.Service
	Products       *product.Service
	Orders         *order.Service
	Assignments    *assignment.Service
	Settings       *settings.Service
	Tokens         *auth.TokenManager
	AllowedOrigins []string
}

func NewRouter(deps RouterDeps) http.Handler {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(deps.AllowedOrigins))

	authed := middleware.AuthRequired(deps.Tokens)

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "healthy"})
	})
	r.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Agrilink API",
			"endpoints": gin.H{
				"auth":     "/api/auth",
				"products": "/api/products",
				"orders":   "/api/orders",
				"users":    "/api/users",
				"delivery": "/api/delivery",
				"admin":    "/api/admin",
			},
		})
	})

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/profile", authed, authHandler.Profile)
		authGroup.PUT("/profile", authed, authHandler.UpdateProfile)
		authGroup.GET("/verify", authed, authHandler.Verify)
	}

	userHandler := handlers.NewUserHandler(deps.Users)
	r.GET("/api/users/:id", userHandler.Get)

	productHandler := handlers.NewProductHandler(deps.Products, deps.Users)
	products := r.Group("/api/products")
	{
		products.GET("", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.GET("/farmer/my-products", authed, middleware.RoleRequired(user.RoleFarmer), productHandler.MyProducts)
		products.POST("", authed, middleware.RoleRequired(user.RoleFarmer), productHandler.Create)
		products.PUT("/:id", authed, middleware.RoleRequired(user.RoleFarmer), productHandler.Update)
		products.DELETE("/:id", authed, middleware.RoleRequired(user.RoleFarmer), productHandler.Delete)
	}

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	orders := r.Group("/api/orders", authed)
	{
		orders.POST("", middleware.RoleRequired(user.RoleBuyer), orderHandler.Create)
		orders.GET("/my-orders", middleware.RoleRequired(user.RoleBuyer), orderHandler.MyOrders)
		orders.GET("/farmer/orders", middleware.RoleRequired(user.RoleFarmer), orderHandler.FarmerOrders)
		orders.GET("/:id", orderHandler.Get)
		orders.PATCH("/:id/status", orderHandler.UpdateStatus)
		orders.POST("/:id/cancel", middleware.RoleRequired(user.RoleBuyer), orderHandler.Cancel)
	}

	deliveryHandler := handlers.NewDeliveryHandler(deps.Users, deps.Assignments)
	delivery := r.Group("/api/delivery", authed, middleware.RoleRequired(user.RoleDelivery))
	{
		delivery.GET("/my-deliveries", deliveryHandler.MyDeliveries)
		delivery.PATCH("/availability", deliveryHandler.SetAvailability)
		delivery.PATCH("/orders/:orderId/status", deliveryHandler.UpdateOrderStatus)
		delivery.GET("/stats", deliveryHandler.Stats)
		delivery.POST("/assignment/:assignmentId/accept", deliveryHandler.Accept)
		delivery.POST("/assignment/:assignmentId/reject", deliveryHandler.Reject)
	}

	adminHandler := handlers.NewAdminHandler(deps.Users, deps.Products, deps.Orders, deps.Settings)
	admin := r.Group("/api/admin", authed, middleware.RoleRequired(user.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/products", adminHandler.ListProducts)
		admin.GET("/orders", adminHandler.ListOrders)
		admin.PATCH("/orders/:id/status", adminHandler.UpdateOrderStatus)
		admin.PATCH("/users/:id/approve", adminHandler.ApproveUser)
		admin.PATCH("/users/:id/suspend", adminHandler.SuspendUser)
		admin.PATCH("/users/:id/unsuspend", adminHandler.UnsuspendUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.PATCH("/products/:id/approve", adminHandler.ApproveProduct)
		admin.PATCH("/products/:id/reject", adminHandler.RejectProduct)
		admin.PATCH("/products/:id/suspend", adminHandler.SuspendProduct)
		admin.DELETE("/products/:id", adminHandler.DeleteProduct)
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/settings", adminHandler.Settings)
		admin.PATCH("/settings/:key", adminHandler.UpdateSetting)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Endpoint not found"})
	})

	return r
}
