package webserver

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/stats"
	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
)

type Proposals struct {
	store store.Store
}

func NewProposals(st store.Store) Proposals {
	return Proposals{store: st}
}

func (h Proposals) Create(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,max=255"`
		Description string `json:"description" binding:"max=10000"`
		Category    string `json:"category" binding:"required"`
		Stage       string `json:"stage" binding:"required"`
		FundingGoal int64  `json:"fundingGoal" binding:"required,gt=0"`
		ImpactScore string `json:"impactScore" binding:"max=255"`
		Publish     bool   `json:"publish"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if !types.ValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown category"})
		return
	}
	if !types.ValidStage(req.Stage) {
		c.JSON(http.StatusBadRequest, gin.H{"err": "unknown stage"})
		return
	}
	if c.GetString("role") != types.RoleInnovator {
		c.JSON(http.StatusForbidden, gin.H{"err": "only innovators can publish proposals"})
		return
	}

	status := types.StatusDraft
	if req.Publish {
		status = types.StatusPublished
	}
	p := types.Proposal{
		OwnerID:     actorID(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Stage:       req.Stage,
		FundingGoal: req.FundingGoal,
		ImpactScore: req.ImpactScore,
		Status:      status,
	}
	if err := h.store.CreateProposal(c, &p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Proposals) List(c *gin.Context) {
	f := store.ProposalFilter{
		Category: c.Query("category"),
		Stage:    c.Query("stage"),
		Status:   c.Query("status"),
	}
	if f.Status == "" {
		f.Status = types.StatusPublished
	}

	list, err := h.store.ListProposals(c, f)
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]gin.H, 0, len(list))
	for _, p := range list {
		out = append(out, gin.H{
			"proposal": p,
			"progress": stats.Progress(p),
		})
	}
	c.JSON(http.StatusOK, gin.H{"proposals": out})
}

func (h Proposals) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid proposal id"})
		return
	}

	p, err := h.store.GetProposal(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	// views are best effort; a lost increment never fails the read
	if err := h.store.BumpViews(c, id); err != nil {
		log.Printf("bump views for proposal %d: %v", id, err)
	}

	likes, _ := h.store.CountLikes(c, id)
	comments, _ := h.store.ListComments(c, id)

	c.JSON(http.StatusOK, gin.H{
		"proposal": p,
		"progress": stats.Progress(p),
		"likes":    likes,
		"comments": comments,
	})
}
