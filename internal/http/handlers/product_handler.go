// README: Product catalog handlers: public browsing plus farmer management.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrilink/internal/http/middleware"
	"agrilink/internal/modules/product"
	"agrilink/internal/modules/user"
)

type ProductHandler struct {
	products *product.Service
	users    *user.Service
}

func NewProductHandler(products *product.Service, users *user.Service) *ProductHandler {
	return &ProductHandler{products: products, users: users}
}

func (h *ProductHandler) List(c *gin.Context) {
	listings, err := h.products.ListCatalog(c.Request.Context(), product.ListFilter{
		Status:   product.Status(c.Query("status")),
		Category: c.Query("category"),
		Location: c.Query("location"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"products": listings})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	listing, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"product": listing})
}

type createProductReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Quantity    float64  `json:"quantity"`
	Location    string   `json:"location"`
	HarvestDate string   `json:"harvest_date"`
	Organic     bool     `json:"organic"`
	Certified   bool     `json:"certified"`
	Images      []string `json:"images"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	approved, err := h.users.IsApprovedFarmer(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !approved {
		fail(c, http.StatusForbidden, "Your farmer account must be approved before listing products")
		return
	}

	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	var harvest *time.Time
	if req.HarvestDate != "" {
		t, err := time.Parse("2006-01-02", req.HarvestDate)
		if err != nil {
			fail(c, http.StatusBadRequest, "harvest_date must be YYYY-MM-DD")
			return
		}
		harvest = &t
	}

	p, err := h.products.Create(c.Request.Context(), product.CreateCommand{
		FarmerID:    claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		BasePrice:   req.Price,
		Quantity:    req.Quantity,
		Location:    req.Location,
		HarvestDate: harvest,
		Organic:     req.Organic,
		Certified:   req.Certified,
		Images:      req.Images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{
		"message": "Product submitted for approval",
		"product": p,
	})
}

type updateProductReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Price       *float64 `json:"price"`
	Location    *string  `json:"location"`
	Available   *bool    `json:"available"`
	Images      []string `json:"images"`
}

func (h *ProductHandler) Update(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	var req updateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.products.Update(c.Request.Context(), claims.UserID, id, product.UpdateCommand{
		Title:       req.Title,
		Description: req.Description,
		Quantity:    req.Quantity,
		BasePrice:   req.Price,
		Location:    req.Location,
		Available:   req.Available,
		Images:      req.Images,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product updated successfully"})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	id, valid := pathID(c, "id")
	if !valid {
		return
	}
	if err := h.products.Delete(c.Request.Context(), claims.UserID, false, id); err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductHandler) MyProducts(c *gin.Context) {
	claims, ok2 := middleware.ClaimsFrom(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	items, err := h.products.ListByFarmer(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"products": items})
}
