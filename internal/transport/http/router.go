package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/globalmarket/backend/internal/handlers"
	"github.com/globalmarket/backend/internal/service/token"
)

type Deps struct {
	DB                  *gorm.DB
	AuthHandler         *handlers.AuthHandler
	CartHandler         *handlers.CartHandler
	ProductHandler      *handlers.ProductHandler
	CatalogHandler      *handlers.CatalogHandler
	OrderHandler        *handlers.OrderHandler
	NotificationHandler *handlers.NotificationHandler
	SearchHandler       *handlers.SearchHandler
	Tokens              *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/register/admin", d.AuthHandler.RegisterAdmin)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/login/admin", d.AuthHandler.LoginAdmin)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.POST("/verify-email", d.AuthHandler.VerifyEmail)
	v1.GET("/verify-email/:token", d.AuthHandler.VerifyEmail)
	v1.POST("/verify-email/resend", d.AuthHandler.ResendVerification)
	v1.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	v1.POST("/reset-password", d.AuthHandler.ResetPassword)

	me := v1.Group("/me", d.Tokens.RequireUser)
	me.GET("", d.AuthHandler.Me)
	me.DELETE("", d.AuthHandler.DeleteAccount)

	v1.GET("/search", d.SearchHandler.SearchProducts)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/latest", d.ProductHandler.GetLatest)
	products.GET("/most-sales", d.ProductHandler.GetMostSales)
	products.GET("/filter/price", d.ProductHandler.FilterByPrice)
	products.GET("/filter/stock", d.ProductHandler.FilterByStock)
	products.GET("/count", d.ProductHandler.GetProductsCount)
	products.GET("/:id", d.ProductHandler.GetProduct)

	categories := v1.Group("/categories")
	categories.GET("", d.CatalogHandler.GetCategories)
	categories.GET("/search", d.CatalogHandler.SearchCategories)
	categories.GET("/names", d.CatalogHandler.GetMatchingNames)
	categories.GET("/count", d.CatalogHandler.GetCategoriesCount)
	categories.GET("/:id", d.CatalogHandler.GetCategory)

	subcategories := v1.Group("/subcategories")
	subcategories.GET("/search", d.CatalogHandler.SearchSubCategories)
	subcategories.GET("/:id", d.CatalogHandler.GetSubCategory)

	notifications := v1.Group("/notifications")
	notifications.POST("/subscribe", d.NotificationHandler.Subscribe)

	userCart := v1.Group("/cart", d.Tokens.RequireUser)
	userCart.POST("", d.CartHandler.CreateCart)
	userCart.GET("", d.CartHandler.GetCart)
	userCart.POST("/products", d.CartHandler.AddProduct)
	userCart.PATCH("/products/:cartProductId", d.CartHandler.UpdateProductQuantity)
	userCart.DELETE("/products/:cartProductId", d.CartHandler.RemoveProduct)
	userCart.DELETE("/products", d.CartHandler.RemoveProducts)
	userCart.DELETE("/clear", d.CartHandler.ClearCart)
	userCart.POST("/checkout", d.CartHandler.Checkout)
	userCart.POST("/checkout/:cartProductId", d.CartHandler.CheckoutSingleProduct)

	orders := v1.Group("/orders", d.Tokens.RequireUser)
	orders.GET("", d.OrderHandler.GetMyOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	v1.GET("/payments", d.OrderHandler.GetMyPayments, d.Tokens.RequireUser)
	v1.GET("/invoices", d.OrderHandler.GetMyInvoices, d.Tokens.RequireUser)

	admin := v1.Group("/admin", d.Tokens.RequireAdmin)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.POST("/categories", d.CatalogHandler.CreateCategory)
	admin.PATCH("/categories/:id", d.CatalogHandler.UpdateCategory)
	admin.DELETE("/categories/:id", d.CatalogHandler.DeleteCategory)
	admin.POST("/categories/:id/subcategories", d.CatalogHandler.AddSubCategory)
	admin.PATCH("/subcategories/:id", d.CatalogHandler.UpdateSubCategory)
	admin.DELETE("/subcategories/:id", d.CatalogHandler.DeleteSubCategory)

	admin.GET("/users", d.AuthHandler.GetUsers)
	admin.GET("/users/count", d.AuthHandler.GetUsersCount)
	admin.PUT("/users/roles", d.AuthHandler.EditRoles)
	admin.GET("/carts/count", d.CartHandler.GetCartsCount)

	admin.POST("/notifications", d.NotificationHandler.Broadcast)
	admin.GET("/notifications", d.NotificationHandler.GetNotifications)
	admin.GET("/subscribers", d.NotificationHandler.GetSubscribers)
	admin.GET("/subscribers/:id/notifications", d.NotificationHandler.GetSubscriberNotifications)
	admin.DELETE("/subscribers/:id", d.NotificationHandler.Unsubscribe)
}
