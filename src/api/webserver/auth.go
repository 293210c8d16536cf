package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ideaforge-io/ideaforge/src/api/store"
	"github.com/ideaforge-io/ideaforge/src/api/types"
)

// Auth mints platform tokens. Real credential management lives in a
// separate identity service; this endpoint only bootstraps an identity by
// email so the rest of the API has an actor to attribute writes to.
type Auth struct {
	store     store.Store
	jwtSecret []byte
}

func NewAuth(st store.Store, secret []byte) Auth {
	return Auth{store: st, jwtSecret: secret}
}

func (a Auth) Token(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=128"`
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required,oneof=innovator investor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	user, err := a.store.GetUserByEmail(c, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		user = types.User{Name: req.Name, Email: req.Email, Role: req.Role}
		err = a.store.CreateUser(c, &user)
	}
	if err != nil {
		fail(c, err)
		return
	}

	token, err := issueJWT(user.ID, user.Role, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
