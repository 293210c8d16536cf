package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/ai"
	"github.com/ideaforge-io/ideaforge/src/api/config"
	"github.com/ideaforge-io/ideaforge/src/api/engagement"
	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/funding"
	"github.com/ideaforge-io/ideaforge/src/api/stats"
	"github.com/ideaforge-io/ideaforge/src/api/store"
)

func attachRoutes(r *gin.Engine, cfg config.Config, st store.Store, pub events.Publisher, relay *ai.Client) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	authH := NewAuth(st, []byte(cfg.JWTSecret))
	propH := NewProposals(st)
	investH := NewInvest(funding.New(st, pub))
	engH := NewEngagement(engagement.New(st, pub))
	statsH := NewStats(stats.New(st))
	aiH := NewAI(relay)

	limiter := NewRateLimiter(100, time.Minute)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/token", authH.Token)

		// public dashboard endpoint: always answers 200
		v1.GET("/stats", statsH.Platform)

		v1.GET("/proposals", propH.List)
		v1.GET("/proposals/:id", propH.Get)

		secured := v1.Group("")
		secured.Use(JWTMiddleware([]byte(cfg.JWTSecret)), RateLimitMiddleware(limiter))
		{
			secured.POST("/proposals", propH.Create)
			secured.POST("/proposals/:id/invest", investH.Record)
			secured.GET("/proposals/:id/investments", investH.List)
			secured.POST("/proposals/:id/like", engH.ToggleLike)
			secured.POST("/proposals/:id/comments", engH.AddComment)
			secured.PATCH("/proposals/:id/comments/:cid", engH.UpdateComment)
			secured.DELETE("/proposals/:id/comments/:cid", engH.DeleteComment)
			secured.POST("/ai/chat", aiH.Chat)
			secured.POST("/ai/impact", aiH.Impact)
		}
	}
}
