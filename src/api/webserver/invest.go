package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/funding"
)

type Invest struct {
	funding *funding.Service
}

func NewInvest(svc *funding.Service) Invest {
	return Invest{funding: svc}
}

func (h Invest) Record(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid proposal id"})
		return
	}

	var req struct {
		Amount int64  `json:"amount" binding:"required"`
		Terms  string `json:"terms" binding:"max=255"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	inv, err := h.funding.Record(c, id, actorID(c), req.Amount, req.Terms)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h Invest) List(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid proposal id"})
		return
	}

	list, err := h.funding.Investments(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investments": list})
}
