package webserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/engagement"
	"github.com/ideaforge-io/ideaforge/src/api/funding"
	"github.com/ideaforge-io/ideaforge/src/api/store"
)

// fail maps service errors to the stable HTTP taxonomy. Anything
// unrecognized is logged and hidden behind a generic 500 so store internals
// never leak.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "not found"})
	case errors.Is(err, funding.ErrForbidden), errors.Is(err, engagement.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"err": err.Error()})
	case errors.Is(err, funding.ErrInvalidAmount),
		errors.Is(err, funding.ErrNotPublished),
		errors.Is(err, engagement.ErrEmptyContent),
		errors.Is(err, engagement.ErrBadRating):
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
	case errors.Is(err, funding.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"err": err.Error()})
	case errors.Is(err, store.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "service temporarily unavailable"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"err": "internal error"})
	}
}
