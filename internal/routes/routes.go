package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/auth"
	"marketplace/internal/handlers"
	"marketplace/internal/middleware"
	"marketplace/internal/models"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Accounts   *handlers.AccountHandler
	Products   *handlers.ProductHandler
	Categories *handlers.CategoryHandler
	Orders     *handlers.OrderHandler
	Dashboards *handlers.DashboardHandler
}

// Auth carries what the authentication filter and the role gates need.
type Auth struct {
	Tokens *auth.TokenIssuer
	Cookie auth.SessionCookie
	Users  middleware.UserFinder
}

func RegisterRoutes(router *gin.Engine, h Handlers, a Auth) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/register", h.Accounts.Register)
	router.POST("/login", h.Accounts.Login)
	router.POST("/logout", h.Accounts.Logout)

	router.GET("/products", h.Products.SearchProducts)
	router.GET("/products/:id", h.Products.GetProduct)
	router.GET("/categories", h.Categories.ListCategories)

	identified := middleware.RequireAnyOf(a.Users)
	staff := middleware.RequireAnyOf(a.Users, models.RoleAdmin, models.RoleSeller)
	sellers := middleware.RequireAnyOf(a.Users, models.RoleSeller)

	private := router.Group("/")
	private.Use(middleware.Authenticate(a.Tokens, a.Cookie), identified)
	{
		private.GET("/me", h.Accounts.Me)
		private.GET("/users/:id", h.Accounts.GetUser)
		private.PUT("/users/:id", h.Accounts.UpdateUser)
		private.DELETE("/users/:id", h.Accounts.DeleteUser)
		private.GET("/users", staff, h.Accounts.ListUsers)
		private.GET("/sellers", staff, h.Accounts.ListSellers)

		private.POST("/products", sellers, h.Products.CreateProduct)
		private.POST("/products/:id/reviews", h.Products.AddReview)

		private.POST("/categories", staff, h.Categories.CreateCategory)
		private.PUT("/categories/:id", staff, h.Categories.UpdateCategory)

		private.POST("/orders", h.Orders.PlaceOrder)
		private.GET("/orders/:id", h.Orders.GetOrder)
		private.PATCH("/orders/:id/status", staff, h.Orders.UpdateStatus)
		private.PATCH("/orders/:id/payment", staff, h.Orders.UpdatePaymentStatus)

		private.GET("/dashboard/:id", sellers, h.Dashboards.GetDashboard)
	}
}
