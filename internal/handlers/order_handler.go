package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/metrics"
	"github.com/Keoroanthony/go-ordertrack/internal/models"
	"github.com/Keoroanthony/go-ordertrack/internal/notifier"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

type OrderResponse struct {
	ID           uint      `json:"id"`
	OrderName    string    `json:"order_name"`
	Price        float64   `json:"price"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// POST /order
func (h *Handler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	user, _ := auth.CurrentUser(c)

	orderName := strings.TrimSpace(c.PostForm("order_name"))
	priceStr := strings.TrimSpace(c.DefaultPostForm("price", "0"))
	customerIDStr := strings.TrimSpace(c.PostForm("customer_id"))

	if orderName == "" || customerIDStr == "" {
		backToDashboard(c, session.Error, "Order name and customer selection are required")
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		backToDashboard(c, session.Error, "Please enter a valid price")
		return
	}
	if price <= 0 {
		backToDashboard(c, session.Error, "Price must be greater than 0")
		return
	}

	customerID, err := strconv.ParseUint(customerIDStr, 10, 0)
	if err != nil || customerID == 0 {
		backToDashboard(c, session.Error, "Customer not found")
		return
	}

	order, err := h.store.CreateOrder(ctx, user.ID, uint(customerID), orderName, price)
	if errors.Is(err, db.ErrNotFound) {
		backToDashboard(c, session.Error, "Customer not found")
		return
	}
	if err != nil {
		log.Error("create order", "user_id", user.ID, "customer_id", customerID, "error", err)
		backToDashboard(c, session.Error, "Error creating order. Please try again.")
		return
	}

	metrics.OrdersCreated.Inc()
	log.Info("order created", "user_id", user.ID, "order_id", order.ID, "customer_id", order.CustomerID)

	// The order is committed; nothing below may turn this into a failure.
	res := h.sms.SendOrderConfirmation(ctx, order.Customer.Phone, order.Name, order.Price)
	h.sendReceipt(ctx, user, order)

	if !res.Delivered {
		log.Warn("order confirmation not delivered", "order_id", order.ID, "mode", res.Mode, "reason", res.Reason)
		backToDashboard(c, session.Warning, fmt.Sprintf("Order \"%s\" created successfully! But SMS failed to send.", order.Name))
		return
	}

	backToDashboard(c, session.Success, fmt.Sprintf("Order \"%s\" created successfully! SMS sent to customer.", order.Name))
}

// sendReceipt emails the owner in the background when receipts are enabled.
func (h *Handler) sendReceipt(ctx context.Context, user *models.User, order models.Order) {
	if h.receipts == nil {
		return
	}

	receipt := notifier.Receipt{
		OwnerName:    user.Name,
		OrderID:      order.ID,
		OrderName:    order.Name,
		CustomerName: order.Customer.Name,
		Price:        order.Price,
	}

	go func(ctx context.Context, to string, receipt notifier.Receipt) {
		h.receipts.SendOrderReceipt(ctx, to, receipt)
	}(context.WithoutCancel(ctx), user.Email, receipt)
}

// GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	orders, err := h.store.OrdersForUser(c.Request.Context(), user.ID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("list orders", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, OrderResponse{
			ID:           o.ID,
			OrderName:    o.Name,
			Price:        o.Price,
			CustomerID:   o.CustomerID,
			CustomerName: o.Customer.Name,
			CreatedAt:    o.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}
