package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/engagement"
)

type Engagement struct {
	svc *engagement.Service
}

func NewEngagement(svc *engagement.Service) Engagement {
	return Engagement{svc: svc}
}

func proposalParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid proposal id"})
		return 0, false
	}
	return id, true
}

func (h Engagement) ToggleLike(c *gin.Context) {
	id, ok := proposalParam(c)
	if !ok {
		return
	}
	liked, err := h.svc.ToggleLike(c, id, actorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h Engagement) AddComment(c *gin.Context) {
	id, ok := proposalParam(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required,max=10000"`
		Rating  int    `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	comment, err := h.svc.AddComment(c, id, actorID(c), req.Content, req.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h Engagement) UpdateComment(c *gin.Context) {
	id, ok := proposalParam(c)
	if !ok {
		return
	}
	cid, err := strconv.ParseUint(c.Param("cid"), 10, 64)
	if err != nil || cid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid comment id"})
		return
	}
	var req struct {
		Content *string `json:"content"`
		Rating  *int    `json:"rating"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	comment, err := h.svc.UpdateComment(c, id, cid, actorID(c), engagement.CommentPatch{
		Content: req.Content,
		Rating:  req.Rating,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h Engagement) DeleteComment(c *gin.Context) {
	id, ok := proposalParam(c)
	if !ok {
		return
	}
	cid, err := strconv.ParseUint(c.Param("cid"), 10, 64)
	if err != nil || cid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid comment id"})
		return
	}
	if err := h.svc.DeleteComment(c, id, cid, actorID(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
