package handler

import (
	cartapp "github.com/ecomstore/backend/internal/application/cart"
	"github.com/gin-gonic/gin"
)

// CartHandler handles shopping cart HTTP requests. Every route acts on the
// caller's own cart.
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// Get godoc
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartView}
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	view, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Add godoc
// @Summary      Add to cart
// @Description  Add a product or merge into its existing line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartView}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/add [post]
func (h *CartHandler) Add(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req cartapp.AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.cartService.Add(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Update godoc
// @Summary      Update cart line
// @Description  Set a line quantity; zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.UpdateItemRequest true "Product and quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartView}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/update [put]
func (h *CartHandler) Update(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.cartService.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Remove godoc
// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        productId path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartView}
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/remove/{productId} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	productID, ok := h.ParamUUID(c, "productId", "product")
	if !ok {
		return
	}

	view, err := h.cartService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Clear godoc
// @Summary      Clear cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=dto.MessageResponse}
// @Security     BearerAuth
// @Router       /cart/clear [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart cleared successfully")
}
