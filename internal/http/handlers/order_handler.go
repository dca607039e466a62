// README: Order handlers: creation, reads, status transitions, cancellation.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/modules/order"
)

type OrderHandler struct {
	orders *order.Service
}

func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderReq struct {
	ProductID           int64   `json:"product_id"`
	Quantity            float64 `json:"quantity"`
	DeliveryAddress     string  `json:"delivery_address"`
	DeliveryLocation    string  `json:"delivery_location"`
	SpecialInstructions string  `json:"special_instructions"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		BuyerID:             a.ID,
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		DeliveryAddress:     req.DeliveryAddress,
		DeliveryLocation:    req.DeliveryLocation,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"order":   o,
	})
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	orders, err := h.orders.ListForBuyer(c.Request.Context(), a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) FarmerOrders(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	orders, err := h.orders.ListForFarmer(c.Request.Context(), a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	detail, err := h.orders.Get(c.Request.Context(), a, id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"order": detail})
}

type updateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
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

func (h *OrderHandler) Cancel(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.orders.Cancel(c.Request.Context(), a.ID, id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}
