package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/ai"
)

type AI struct {
	relay *ai.Client
}

func NewAI(relay *ai.Client) AI {
	return AI{relay: relay}
}

func relayStatus(err error) int {
	switch ai.KindOf(err) {
	case ai.BadRequest:
		return http.StatusBadRequest
	case ai.RateLimited:
		return http.StatusTooManyRequests
	case ai.Unavailable:
		return http.StatusServiceUnavailable
	default:
		// Unconfigured, AuthFailed and Unknown are all server-side problems
		return http.StatusInternalServerError
	}
}

func (h AI) Chat(c *gin.Context) {
	var req struct {
		Messages []ai.Message `json:"messages" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	reply, err := h.relay.Chat(c, req.Messages)
	if err != nil {
		c.JSON(relayStatus(err), gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}

func (h AI) Impact(c *gin.Context) {
	var req struct {
		Idea string `json:"idea" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	score, err := h.relay.ImpactScore(c, req.Idea)
	if err != nil {
		c.JSON(relayStatus(err), gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"impactScore": score})
}
