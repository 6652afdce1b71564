package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/rigshop/internal/config"
	"github.com/polkiloo/rigshop/internal/metrics"
	"github.com/polkiloo/rigshop/internal/server/http/handlers"
	"github.com/polkiloo/rigshop/internal/server/http/middleware"
)

// Params are the dependencies of the HTTP router.
type Params struct {
	fx.In

	Facade  handlers.ShopFacade
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Config  *config.Config
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	if !p.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest(p.Config.MaxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	errs := handlers.NewErrorWriter(p.Logger, p.Config.IsDevelopment())
	authHandler := handlers.NewAuthHandler(p.Facade, errs)
	catalogHandler := handlers.NewCatalogHandler(p.Facade, errs)
	buildHandler := handlers.NewBuildHandler(p.Facade, errs)
	checkoutHandler := handlers.NewCheckoutHandler(p.Facade, errs)
	orderHandler := handlers.NewOrderHandler(p.Facade, errs)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	requireAuth := middleware.AuthRequired(p.Facade)
	optionalAuth := middleware.AuthOptional(p.Facade)

	engine.GET("/healthz", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	api := engine.Group("/api")

	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)
	user.POST("/logout", requireAuth, authHandler.Logout)
	user.GET("/me", requireAuth, authHandler.Me)

	components := api.Group("/components")
	components.GET("", catalogHandler.List)
	components.GET("/:id", catalogHandler.Get)
	components.PUT("/:id", requireAuth, catalogHandler.Upsert)

	builds := api.Group("/builds")
	builds.GET("/published", buildHandler.Published)
	builds.GET("/:id", optionalAuth, buildHandler.Get)
	mine := builds.Group("", requireAuth)
	mine.POST("", buildHandler.Create)
	mine.GET("", buildHandler.Mine)
	mine.PUT("/:id", buildHandler.Update)
	mine.PATCH("/:id/publish", buildHandler.Publish)
	mine.DELETE("/:id", buildHandler.Delete)

	api.POST("/checkout", optionalAuth, checkoutHandler.Checkout)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.GET("/:id/invoice", orderHandler.Invoice)
	orders.PATCH("/:id/status", orderHandler.Status)
	orders.DELETE("/:id", orderHandler.Delete)

	return engine
}
