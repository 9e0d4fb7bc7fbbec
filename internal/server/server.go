// Package server assembles the gin engine: middleware, templates and routes.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/handlers"
	"github.com/Keoroanthony/go-ordertrack/internal/metrics"
	"github.com/Keoroanthony/go-ordertrack/internal/middleware"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
	"github.com/Keoroanthony/go-ordertrack/internal/web"
)

type Deps struct {
	Logger   *slog.Logger
	Session  session.Options
	Auth     *auth.Handler
	Handlers *handlers.Handler
}

func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	r := gin.New()

	// ── middleware ──
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recovery())
	r.Use(metrics.Middleware())
	r.Use(session.Middleware(d.Session))

	r.SetHTMLTemplate(web.Templates())

	// ── public endpoints ──
	r.GET("/", d.Handlers.Index)
	r.GET("/login", d.Auth.Login)
	r.GET("/callback", d.Auth.Callback)
	r.GET("/logout", d.Auth.Logout)
	r.GET("/api/health", d.Handlers.Health)
	r.GET("/metrics", metrics.Handler())

	// ── pages ──
	pages := r.Group("/")
	pages.Use(d.Auth.RequireAuth())
	{
		pages.GET("/dashboard", d.Handlers.Dashboard)
		pages.POST("/customer", d.Handlers.CreateCustomer)
		pages.POST("/order", d.Handlers.CreateOrder)
	}

	// ── protected API ──
	api := r.Group("/api")
	api.Use(d.Auth.RequireAPIAuth())
	{
		api.GET("/customers", d.Handlers.ListCustomers)
		api.GET("/orders", d.Handlers.ListOrders)
	}

	return r
}
