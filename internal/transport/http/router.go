package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/handlers"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	SessionSecret  []byte
	Sessions       authmw.Resolver
	Metrics        http.Handler
	ImagesDir      string
	PublicDir      string
	AuthHandler    *handlers.AuthHandler
	CatalogHandler *handlers.CatalogHandler
	CartHandler    *handlers.CartHandler
	OrderHandler   *handlers.OrderHandler
	AdminHandler   *handlers.AdminHandler
}

// NewDeps builds the handlers on top of the given services.
func NewDeps(gdb *gorm.DB, secret []byte, cookieSecure bool, auth *service.AuthService, catalog *service.CatalogService,
	cart *service.CartService, orders *service.OrderService, admin *service.AdminService) *Deps {
	return &Deps{
		DB:             gdb,
		SessionSecret:  secret,
		Sessions:       auth,
		AuthHandler:    &handlers.AuthHandler{Auth: auth, CookieSecure: cookieSecure},
		CatalogHandler: &handlers.CatalogHandler{Catalog: catalog},
		CartHandler:    &handlers.CartHandler{Cart: cart},
		OrderHandler:   &handlers.OrderHandler{Orders: orders},
		AdminHandler:   &handlers.AdminHandler{Admin: admin},
	}
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	login := authmw.RequireLogin(d.SessionSecret, d.Sessions)

	api := e.Group("/api")

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.Logout)
	api.GET("/user", d.AuthHandler.Me, login)

	api.GET("/products", d.CatalogHandler.ListProducts)
	api.GET("/products/search", d.CatalogHandler.Search)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)
	api.GET("/categories", d.CatalogHandler.Categories)

	cart := api.Group("/cart", login)

	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.PUT("/:id", d.CartHandler.UpdateCartItem)
	cart.DELETE("/:id", d.CartHandler.DeleteCartItem)

	orders := api.Group("/orders", login)

	orders.POST("", d.OrderHandler.PlaceOrder)
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:id/items", d.OrderHandler.ListOrderItems)

	admin := api.Group("/admin", login, authmw.RequireAdmin)

	admin.GET("/products", d.AdminHandler.ListProducts)
	admin.POST("/products", d.AdminHandler.CreateProduct)
	admin.PUT("/products/:id", d.AdminHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.AdminHandler.DeleteProduct)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.GET("/orders/:id/items", d.AdminHandler.ListOrderItems)
	admin.PUT("/orders/:id/status", d.AdminHandler.UpdateOrderStatus)
	admin.POST("/promotions", d.AdminHandler.SavePromotion)

	if d.ImagesDir != "" {
		e.Static("/images", d.ImagesDir)
	}
	if d.PublicDir != "" {
		e.Static("/", d.PublicDir)
	}
}
