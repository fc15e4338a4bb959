// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/arsouza/fintrack/internal/auth"
	"github.com/arsouza/fintrack/internal/config"
	"github.com/arsouza/fintrack/internal/handler"
	"github.com/arsouza/fintrack/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication or
// dependencies, currently just the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth mounts the credential endpoints. Login and registration
// sit behind the Redis token bucket so credential guessing is throttled;
// user deletion requires a valid bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, tokens *auth.TokenService, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/auth", limiter)
	g.POST("/login", a.Login)
	g.POST("/user/create", a.Register)

	e.DELETE("/auth/user/:id", a.DeleteUser, middleware.BearerAuth(tokens))
}

// RegisterAPI mounts the bearer-protected endpoints under /api. The
// response cache wraps only the transaction listings and runs after
// BearerAuth so cache keys can be scoped per user.
func RegisterAPI(e *echo.Echo, a *handler.AuthHandler, t *handler.TransactionHandler, tokens *auth.TokenService, rdb *redis.Client) {
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	g := e.Group("/api", middleware.BearerAuth(tokens))
	g.GET("/me", a.Me)

	g.GET("/transactions", t.GetAll, cache)
	g.GET("/transactions/range", t.GetByDateRange, cache)
	g.POST("/transactions", t.Create)
	g.DELETE("/transactions/:id", t.Delete)
}
