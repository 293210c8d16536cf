package webserver

import (
	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/ai"
	"github.com/ideaforge-io/ideaforge/src/api/config"
	"github.com/ideaforge-io/ideaforge/src/api/events"
	"github.com/ideaforge-io/ideaforge/src/api/store"
)

func New(cfg config.Config, st store.Store, pub events.Publisher, relay *ai.Client) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, st, pub, relay)
	return g
}
