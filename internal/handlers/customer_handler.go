package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

type CustomerResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"created_at"`
	OrderCount int64     `json:"order_count"`
}

// POST /customer
func (h *Handler) CreateCustomer(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	name := strings.TrimSpace(c.PostForm("name"))
	phone := strings.TrimSpace(c.PostForm("phone"))

	if name == "" || phone == "" {
		backToDashboard(c, session.Error, "Name and phone are required")
		return
	}

	customer, err := h.store.CreateCustomer(c.Request.Context(), user.ID, name, phone)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("create customer", "user_id", user.ID, "error", err)
		backToDashboard(c, session.Error, "Error creating customer. Please try again.")
		return
	}

	logger.FromContext(c.Request.Context()).Info("customer created", "user_id", user.ID, "customer_id", customer.ID)
	backToDashboard(c, session.Success, `Customer "`+name+`" created successfully!`)
}

// GET /api/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	user, _ := auth.CurrentUser(c)

	summaries, err := h.store.CustomerSummaries(c.Request.Context(), user.ID)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("list customers", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	resp := make([]CustomerResponse, 0, len(summaries))
	for _, s := range summaries {
		resp = append(resp, CustomerResponse{
			ID:         s.ID,
			Name:       s.Name,
			Phone:      s.Phone,
			CreatedAt:  s.CreatedAt,
			OrderCount: s.OrderCount,
		})
	}

	c.JSON(http.StatusOK, resp)
}
