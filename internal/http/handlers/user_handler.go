// README: Public user lookup.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/modules/user"
)

type UserHandler struct {
	users *user.Service
}

func NewUserHandler(users *user.Service) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	info, err := h.users.GetPublic(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": info})
}
