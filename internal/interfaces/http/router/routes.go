package router

import (
	"github.com/ecomstore/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers served by the storefront API
type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Upload  *handler.UploadHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
}

// Guards are the access-control middleware applied per route.
// AuthLimit may be nil when login throttling is disabled.
type Guards struct {
	Authenticated gin.HandlerFunc
	Admin         gin.HandlerFunc
	AuthLimit     gin.HandlerFunc
}

// StorefrontGroups builds the versioned route groups of the store API
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	authn := g.Authenticated
	admin := g.Admin

	system := NewDomainGroup("system", "")
	system.GET("/info", h.Health.Info)

	auth := NewDomainGroup("auth", "/auth")
	if g.AuthLimit != nil {
		auth.POST("/register", g.AuthLimit, h.Auth.Register)
		auth.POST("/login", g.AuthLimit, h.Auth.Login)
	} else {
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}
	auth.POST("/refresh", h.Auth.Refresh).
		GET("/me", authn, h.Auth.Me).
		POST("/logout", authn, h.Auth.Logout).
		PUT("/profile", authn, h.Auth.UpdateProfile).
		PUT("/password", authn, h.Auth.ChangePassword)

	products := NewDomainGroup("catalog", "/products")
	products.GET("", h.Product.List).
		GET("/featured", h.Product.Featured).
		GET("/:id", h.Product.GetByID).
		POST("", authn, admin, h.Product.Create).
		PUT("/:id", authn, admin, h.Product.Update).
		DELETE("/:id", authn, admin, h.Product.Delete).
		POST("/:id/reviews", authn, h.Product.AddReview)

	uploads := NewDomainGroup("uploads", "/uploads")
	uploads.POST("/images", authn, admin, h.Upload.UploadImage).
		GET("/*key", h.Upload.GetImage).
		DELETE("/*key", authn, admin, h.Upload.DeleteImage)

	cart := NewDomainGroup("cart", "/cart").Use(authn)
	cart.GET("", h.Cart.Get).
		POST("/add", h.Cart.Add).
		PUT("/update", h.Cart.Update).
		DELETE("/remove/:productId", h.Cart.Remove).
		DELETE("/clear", h.Cart.Clear)

	orders := NewDomainGroup("order", "/orders").Use(authn)
	orders.POST("", h.Order.Create).
		GET("/my-orders", h.Order.MyOrders).
		GET("", admin, h.Order.List).
		GET("/:id", h.Order.Get).
		PUT("/:id/status", admin, h.Order.UpdateStatus).
		PUT("/:id/cancel", h.Order.Cancel).
		GET("/:id/invoice", h.Order.Invoice)

	return []*DomainGroup{system, auth, products, uploads, cart, orders}
}

// Mount registers the storefront API on the engine: the unversioned health
// probe plus every versioned group. It returns the router for inspection.
func Mount(engine *gin.Engine, h Handlers, g Guards, opts ...RouterOption) *Router {
	engine.GET("/api/health", h.Health.Health)

	r := NewRouter(engine, opts...)
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	r.Setup()
	return r
}
