// README: Admin surface: user management, product moderation, platform stats,
// system settings.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/modules/order"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/settings"
	"agrilink/internal/modules/user"
)

type AdminHandler struct {
	users    *user.Service
	products *product.Service
	orders   *order.Service
	settings *settings.Service
}

func NewAdminHandler(users *user.Service, products *product.Service, orders *order.Service, st *settings.Service) *AdminHandler {
	return &AdminHandler{users: users, products: products, orders: orders, settings: st}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), user.Role(c.Query("type")))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) ListProducts(c *gin.Context) {
	listings, err := h.products.ListAll(c.Request.Context(), product.Status(c.Query("status")))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"products": listings})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"orders": orders})
}

func (h *AdminHandler) ApproveUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.users.ApproveFarmer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User approved successfully"})
}

func (h *AdminHandler) SuspendUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.users.Suspend(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User suspended successfully"})
}

func (h *AdminHandler) UnsuspendUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.users.Unsuspend(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User unsuspended successfully"})
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (h *AdminHandler) ApproveProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.products.Approve(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product approved successfully"})
}

type rejectProductReq struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) RejectProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req rejectProductReq
	_ = c.ShouldBindJSON(&req)
	if err := h.products.Reject(c.Request.Context(), id, req.Reason); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product rejected"})
}

func (h *AdminHandler) SuspendProduct(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.products.Suspend(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product suspended"})
}

func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.products.Delete(c.Request.Context(), a.ID, true, id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// AdminUpdateOrderStatus is the unrestricted transition endpoint.
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		fail(c, http.StatusBadRequest, "status is required")
		return
	}
	if err := h.orders.UpdateStatus(c.Request.Context(), a, id, order.Status(req.Status)); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Order status updated successfully"})
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	userCounts, err := h.users.DashboardCounts(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	productCounts, err := h.products.DashboardCounts(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	totalOrders, err := h.orders.Count(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"stats": gin.H{
		"total_users":        userCounts.TotalUsers,
		"total_products":     productCounts.TotalProducts,
		"total_orders":       totalOrders,
		"pending_farmers":    userCounts.PendingFarmers,
		"pending_products":   productCounts.PendingProducts,
		"active_farmers":     userCounts.ActiveFarmers,
		"available_delivery": userCounts.AvailableDelivery,
	}})
}

func (h *AdminHandler) Settings(c *gin.Context) {
	all, err := h.settings.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"settings": all})
}

type updateSettingReq struct {
	Value string `json:"value"`
}

func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	var req updateSettingReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Value == "" {
		fail(c, http.StatusBadRequest, "value is required")
		return
	}
	if err := h.settings.Update(c.Request.Context(), key, req.Value); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Setting updated successfully"})
}
