// README: Auth handlers for register/login/profile/verify.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/auth"
	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/user"
)

type AuthHandler struct {
	users  *user.Service
	tokens *auth.TokenManager
}

func NewAuthHandler(users *user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerReq struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Password      string  `json:"password"`
	Phone         string  `json:"phone"`
	Location      string  `json:"location"`
	Type          string  `json:"type"`
	FarmSize      *string `json:"farmSize"`
	Experience    *string `json:"experience"`
	VehicleType   *string `json:"vehicleType"`
	LicenseNumber *string `json:"licenseNumber"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := h.users.Register(c.Request.Context(), user.RegisterCommand{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		Phone:         req.Phone,
		Location:      req.Location,
		Role:          user.Role(req.Type),
		FarmSize:      req.FarmSize,
		Experience:    req.Experience,
		VehicleType:   req.VehicleType,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	msg := "Registration successful! You can now login."
	if u.Role == user.RoleFarmer {
		msg = "Registration successful! Your account is pending admin approval."
	}
	ok(c, http.StatusCreated, gin.H{"message": msg, "userId": u.ID})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := h.tokens.Issue(u)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Login successful", "token": token, "user": u})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	u, err := h.users.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": u})
}

type updateProfileReq struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Location   string  `json:"location"`
	FarmSize   *string `json:"farmSize"`
	Experience *string `json:"experience"`
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.users.UpdateProfile(c.Request.Context(), claims.UserID, user.UpdateProfileCommand{
		Name:       req.Name,
		Phone:      req.Phone,
		Location:   req.Location,
		FarmSize:   req.FarmSize,
		Experience: req.Experience,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// Verify lets clients confirm a stored token still works.
func (h *AuthHandler) Verify(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	ok(c, http.StatusOK, gin.H{"user": gin.H{
		"id":    claims.UserID,
		"email": claims.Email,
		"type":  claims.Role,
		"name":  claims.Name,
	}})
}
