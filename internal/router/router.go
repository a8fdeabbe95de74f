// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/smalltheater/ticketdesk/internal/config"
	"github.com/smalltheater/ticketdesk/internal/handler"
	"github.com/smalltheater/ticketdesk/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication:
// health check, catalog browsing and the visitor booking lifecycle.
// The booking endpoints sit behind the redis token-bucket limiter;
// the read endpoints are cheap enough to leave open.
func RegisterRoutes(e *echo.Echo, p *handler.PublicHandler, b *handler.BookingHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	e.GET("/v1/shows", p.ListShows)
	e.GET("/v1/shows/:id/seats", p.ShowSeats)

	limited := e.Group("/v1/bookings")
	limited.Use(middleware.NewTokenBucket(rlCfg, rdb))
	limited.POST("", b.Create)
	limited.GET("/:id", b.Get)
	limited.PUT("/:id/seats", b.ModifySeats)
	limited.POST("/:id/cancel", b.Cancel)
}

// RegisterAdmin registers the staff endpoints.  Login and logout are
// open; everything else requires a valid admin session cookie minted
// by Login.
func RegisterAdmin(e *echo.Echo, auth *handler.AdminAuthHandler, a *handler.AdminHandler, jwtSecret string) {
	e.POST("/v1/admin/login", auth.Login)
	e.POST("/v1/admin/logout", auth.Logout)

	g := e.Group("/v1/admin")
	g.Use(middleware.AdminAuth(jwtSecret))
	g.POST("/shows", a.CreateShow)
	g.PUT("/shows/:id", a.UpdateShow)
	g.DELETE("/shows/:id", a.DeleteShow)
	g.GET("/shows/:id/bookings", a.ListBookings)
	g.POST("/checkin", a.CheckIn)
	g.POST("/checkout", a.CheckOut)
	g.POST("/purge", a.RunPurge)
}
