package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rein-lin153/CableWeb/internal/service"
)

type CartHandler struct {
	cart *service.CartService
}

func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// List GET /api/cart
func (h *CartHandler) List(c *gin.Context) {
	view, err := h.cart.List(GetUserID(c))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, view)
}

type addCartRequest struct {
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// Add POST /api/cart/items
func (h *CartHandler) Add(c *gin.Context) {
	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	item, err := h.cart.Add(GetUserID(c), req.VariantID, req.Quantity)
	if err != nil {
		Error(c, err)
		return
	}
	Created(c, item)
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity PUT /api/cart/items/:id
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数不合法: "+err.Error())
		return
	}
	if err := h.cart.UpdateQuantity(GetUserID(c), c.Param("id"), req.Quantity); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// Remove DELETE /api/cart/items/:id
func (h *CartHandler) Remove(c *gin.Context) {
	if err := h.cart.Remove(GetUserID(c), c.Param("id")); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}

// Clear DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cart.Clear(GetUserID(c)); err != nil {
		Error(c, err)
		return
	}
	Success(c, nil)
}
