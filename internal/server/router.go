package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/pro-prioritet/tracker/internal/auth"
	"github.com/pro-prioritet/tracker/internal/kvstore"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	KV          kvstore.Store
	Auth        auth.Provider
	// RateLimit is requests/second per client IP; zero disables limiting.
	RateLimit rate.Limit
	RateBurst int
}

// BuildRouter wires middleware and routes. Signup and health are public;
// everything else requires a bearer token the auth provider accepts.
func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))
	r.Use(RequestIDMiddleware())
	if dep.RateLimit > 0 {
		burst := dep.RateBurst
		if burst <= 0 {
			burst = int(dep.RateLimit)
		}
		r.Use(RateLimitMiddleware(dep.RateLimit, burst))
	}

	healthHandler := NewHealthHandler(dep.ServiceName, dep.Version, dep.KV)
	healthHandler.RegisterRoutes(r)

	h := New(dep.KV, dep.Auth)
	r.POST("/signup", h.signup)

	authed := r.Group("/")
	authed.Use(AuthMiddleware(dep.Auth))
	{
		authed.GET("/projects", h.listProjects)
		authed.POST("/projects", h.createProject)
		authed.PUT("/projects/:id", h.updateProject)
		authed.DELETE("/projects/:id", h.deleteProject)

		authed.GET("/teams", h.listTeams)
		authed.POST("/teams", h.createTeam)
		authed.POST("/teams/join", h.joinTeam)

		authed.GET("/profile", h.getProfile)
		authed.PUT("/profile", h.updateProfile)
	}

	return r
}
