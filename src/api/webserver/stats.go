package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/stats"
)

type Stats struct {
	svc *stats.Service
}

func NewStats(svc *stats.Service) Stats {
	return Stats{svc: svc}
}

// Platform always answers 200; an unreachable store degrades the body to
// zeros rather than breaking the landing page.
func (h Stats) Platform(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Platform(c))
}
