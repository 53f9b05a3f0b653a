package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/shopdb/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/shopdb/pkg/middleware/logging"
)

type Deps struct {
	App        *AppHTTP
	Users      *UsersHTTP
	Auth       *AuthHTTP
	Categories *CategoriesHTTP
	Products   *ProductsHTTP
	Orders     *OrdersHTTP

	JWT *authmw.JWTMiddleware
	// AdminGuard, when set, wraps batch and balance routes.
	AdminGuard echo.MiddlewareFunc
	Metrics    echo.HandlerFunc
}

// NewEcho builds an echo instance with the binder, validator, error handler
// and base middleware every route shares. extra runs after the request logger.
func NewEcho(log *slog.Logger, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Binder = StrictBinder{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(loggingmw.RequestLogger(log, "/health/live", "/health/ready", "/metrics"))
	e.Use(extra...)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", d.App.Root)
	e.GET("/health", d.App.Health)
	e.GET("/info", d.App.Info)
	e.GET("/health/live", d.App.Live)
	e.GET("/health/ready", d.App.Ready)
	if d.Metrics != nil {
		e.GET("/metrics", d.Metrics)
	}

	var guarded []echo.MiddlewareFunc
	if d.AdminGuard != nil {
		guarded = append(guarded, d.AdminGuard)
	}

	users := e.Group("/users")
	users.POST("", d.Users.Create)
	users.GET("", d.Users.FindAll)
	users.GET("/search/query", d.Users.Search)
	users.GET("/role/:role", d.Users.FindByRole)
	users.GET("/status/:status", d.Users.FindByStatus)
	users.GET("/email/:email", d.Users.FindByEmail)
	users.GET("/username/:username", d.Users.FindByUsername)
	users.GET("/page/list", d.Users.Page)
	users.GET("/stats/overview", d.Users.Stats)
	users.GET("/active/with-orders", d.Users.ActiveWithOrders)
	users.GET("/with-order-count", d.Users.WithOrderCount)
	users.PATCH("/batch/status", d.Users.UpdateMultipleStatus, guarded...)
	users.DELETE("/batch/delete", d.Users.DeleteMultiple, guarded...)
	users.POST("/transfer-balance", d.Users.TransferBalance, guarded...)
	users.DELETE("/soft/:id", d.Users.SoftDelete)
	users.POST("/restore/:id", d.Users.Restore)
	users.GET("/:id", d.Users.FindOne)
	users.PATCH("/:id", d.Users.Update)
	users.DELETE("/:id", d.Users.Remove)

	auth := e.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/register", d.Auth.Register)
	auth.POST("/change-password/:userId", d.Auth.ChangePassword)
	auth.GET("/profile/:userId", d.Auth.Profile)
	if d.JWT != nil {
		auth.GET("/me", d.Auth.Me, d.JWT.RequireAuth)
	}

	categories := e.Group("/categories")
	categories.POST("", d.Categories.Create)
	categories.GET("", d.Categories.FindAll)
	categories.GET("/:id", d.Categories.FindOne)
	categories.PATCH("/:id", d.Categories.Update)
	categories.DELETE("/:id", d.Categories.Remove)

	products := e.Group("/products")
	products.POST("", d.Products.Create)
	products.GET("", d.Products.FindAll)
	products.GET("/category/:categoryId", d.Products.FindByCategory)
	products.GET("/status/:status", d.Products.FindByStatus)
	products.GET("/type/:type", d.Products.FindByType)
	products.GET("/search/query", d.Products.Search)
	products.GET("/search/full-text", d.Products.FullTextSearch)
	products.GET("/price/range", d.Products.PriceRange)
	products.GET("/stock/in-stock", d.Products.InStock)
	products.GET("/stock/low-stock", d.Products.LowStock)
	products.GET("/stock/out-of-stock", d.Products.OutOfStock)
	products.GET("/discounted/list", d.Products.Discounted)
	products.GET("/popular/list", d.Products.Popular)
	products.GET("/latest/list", d.Products.Latest)
	products.GET("/page/list", d.Products.Page)
	products.GET("/stats/overview", d.Products.Stats)
	products.GET("/sales/data", d.Products.SalesData)
	products.GET("/tags/search", d.Products.ByTags)
	products.POST("/attributes/search", d.Products.ByAttributes)
	products.POST("/stock/batch-update", d.Products.BatchUpdateStock, guarded...)
	products.GET("/:id", d.Products.FindOne)
	products.PATCH("/:id", d.Products.Update)
	products.DELETE("/:id", d.Products.Remove)
	products.PATCH("/:id/stock", d.Products.UpdateStock)
	products.POST("/:id/increment-sold", d.Products.IncrementSold)
	products.POST("/:id/increment-view", d.Products.IncrementView)
	products.POST("/:id/update-rating", d.Products.UpdateRating)

	orders := e.Group("/orders")
	orders.POST("", d.Orders.Create)
	orders.POST("/with-items", d.Orders.CreateWithItems)
	orders.GET("", d.Orders.FindAll)
	orders.GET("/user/:userId", d.Orders.FindByUser)
	orders.GET("/status/:status", d.Orders.FindByStatus)
	orders.GET("/payment/:paymentStatus", d.Orders.FindByPaymentStatus)
	orders.GET("/stats/overview", d.Orders.Stats)
	orders.GET("/:id", d.Orders.FindOne)
	orders.PATCH("/:id", d.Orders.Update)
	orders.DELETE("/:id", d.Orders.Remove)
	orders.PATCH("/:id/status", d.Orders.UpdateStatus)
	orders.PATCH("/:id/payment-status", d.Orders.UpdatePaymentStatus)
}
