// README: Delivery dashboard handlers: availability, assignments, progress.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agrilink/internal/modules/assignment"
	"agrilink/internal/modules/order"
	"agrilink/internal/modules/user"
)

type DeliveryHandler struct {
	users       *user.Service
	assignments *assignment.Service
}

func NewDeliveryHandler(users *user.Service, assignments *assignment.Service) *DeliveryHandler {
	return &DeliveryHandler{users: users, assignments: assignments}
}

func (h *DeliveryHandler) MyDeliveries(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	deliveries, err := h.assignments.MyDeliveries(c.Request.Context(), a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deliveries": deliveries})
}

type availabilityReq struct {
	AvailabilityStatus string `json:"availability_status"`
}

func (h *DeliveryHandler) SetAvailability(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.AvailabilityStatus == "" {
		fail(c, http.StatusBadRequest, "availability_status is required")
		return
	}
	err := h.users.SetAvailability(c.Request.Context(), a.ID, user.Availability(req.AvailabilityStatus))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Availability updated successfully"})
}

type deliveryStatusReq struct {
	Status string `json:"status"`
}

func (h *DeliveryHandler) UpdateOrderStatus(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	orderID, valid := pathID(c, "orderId")
	if !valid {
		return
	}
	var req deliveryStatusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		fail(c, http.StatusBadRequest, "status is required")
		return
	}
	err := h.assignments.UpdateDeliveryStatus(c.Request.Context(), a.ID, orderID, order.Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Delivery status updated successfully"})
}

func (h *DeliveryHandler) Stats(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	stats, err := h.assignments.Stats(c.Request.Context(), a.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *DeliveryHandler) Accept(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "assignmentId")
	if !valid {
		return
	}
	if err := h.assignments.Accept(c.Request.Context(), a.ID, id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Assignment accepted"})
}

func (h *DeliveryHandler) Reject(c *gin.Context) {
	a, ok2 := actor(c)
	if !ok2 {
		return
	}
	id, valid := pathID(c, "assignmentId")
	if !valid {
		return
	}
	if err := h.assignments.Reject(c.Request.Context(), a.ID, id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Assignment rejected"})
}
