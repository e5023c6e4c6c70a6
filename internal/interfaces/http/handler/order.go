package handler

import (
	"fmt"
	"net/http"

	orderapp "github.com/ecomstore/backend/internal/application/order"
	"github.com/ecomstore/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// requester identifies the caller for ownership checks
func (h *OrderHandler) requester(c *gin.Context) (orderapp.Requester, bool) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return orderapp.Requester{}, false
	}
	return orderapp.Requester{UserID: userID, IsAdmin: middleware.IsAdmin(c)}, true
}

// Create godoc
// @Summary      Place an order
// @Description  Reserve stock, snapshot prices and clear the cart in one transaction.
// @Description  A repeated Idempotency-Key returns the original order.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Client generated key, kept for 24h"
// @Param        request body orderapp.CreateOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req orderapp.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), userID, req, c.GetHeader(middleware.IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// MyOrders godoc
// @Summary      My orders
// @Description  The caller's orders, newest first
// @Tags         orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]orderapp.OrderResponse}
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/my-orders [get]
func (h *OrderHandler) MyOrders(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	orders, err := h.orderService.MyOrders(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get godoc
// @Summary      Get order
// @Description  Visible to the owner and to admins
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id, requester)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List godoc
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(10) maximum(100)
// @Param        status query string false "Order status" Enums(pending, confirmed, processing, shipped, delivered, cancelled)
// @Success      200 {object} dto.Response{data=orderapp.OrderListResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var req orderapp.ListOrdersRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.orderService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateStatus godoc
// @Summary      Update order status
// @Description  Move an order forward; cancelling restocks its items
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body orderapp.UpdateStatusRequest true "New status and tracking data"
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return
	}
	var req orderapp.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel an order
// @Description  Owners may cancel pending or confirmed orders
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=orderapp.OrderResponse}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/cancel [put]
func (h *OrderHandler) Cancel(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Invoice godoc
// @Summary      Download invoice
// @Description  HTML invoice, or PDF when printing is enabled
// @Tags         orders
// @Produce      text/html,application/pdf
// @Param        id path string true "Order ID" format(uuid)
// @Param        format query string false "Output format" Enums(html, pdf) default(html)
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/invoice [get]
func (h *OrderHandler) Invoice(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}
	id, ok := h.ParamUUID(c, "id", "order")
	if !ok {
		return
	}

	file, err := h.orderService.Invoice(c.Request.Context(), id, requester, c.Query("format"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	disposition := "inline"
	if file.ContentType == "application/pdf" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
