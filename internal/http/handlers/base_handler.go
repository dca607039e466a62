// README: Shared handler utilities: response envelope and error mapping.
package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/assignment"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/settings"
	"agrilink/internal/modules/user"
)

// Every response carries the success flag; payload fields ride alongside it.
func ok(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// writeError maps module sentinel errors onto HTTP statuses. Unknown errors
// get logged and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrValidation),
		errors.Is(err, product.ErrValidation),
		errors.Is(err, order.ErrValidation),
		errors.Is(err, assignment.ErrValidation),
		errors.Is(err, user.ErrEmailTaken):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInvalidState),
		errors.Is(err, assignment.ErrInvalidState):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, user.ErrPendingApproval):
		fail(c, http.StatusForbidden, "Your farmer account is pending admin approval. Please wait for verification.")
	case errors.Is(err, user.ErrSuspended):
		fail(c, http.StatusForbidden, "Your account has been suspended. Please contact admin.")
	case errors.Is(err, product.ErrForbidden),
		errors.Is(err, order.ErrForbidden):
		fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, order.ErrProductUnavailable),
		errors.Is(err, assignment.ErrNotFound),
		errors.Is(err, settings.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// actor converts the verified claims into the identity modules reason about.
func actor(c *gin.Context) (order.Actor, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return order.Actor{}, false
	}
	return order.Actor{ID: claims.UserID, Role: claims.Role}, true
}
