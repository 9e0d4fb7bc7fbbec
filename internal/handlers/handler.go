package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-ordertrack/internal/auth"
	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/models"
	"github.com/Keoroanthony/go-ordertrack/internal/notifier"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

// Store is the persistence the handlers need. Every call is scoped to the
// given owner.
type Store interface {
	CreateCustomer(ctx context.Context, userID uint, name, phone string) (models.Customer, error)
	CustomersForUser(ctx context.Context, userID uint) ([]models.Customer, error)
	CustomerSummaries(ctx context.Context, userID uint) ([]db.CustomerSummary, error)
	CreateOrder(ctx context.Context, userID, customerID uint, name string, price float64) (models.Order, error)
	OrdersForUser(ctx context.Context, userID uint) ([]models.Order, error)
}

// Notifier tells a customer about their new order.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, phone, orderName string, price float64) notifier.Result
}

// ReceiptSender emails the owning user a receipt for a new order.
type ReceiptSender interface {
	SendOrderReceipt(ctx context.Context, to string, r notifier.Receipt) notifier.Result
}

type Handler struct {
	store    Store
	sms      Notifier
	receipts ReceiptSender
}

// New wires the page and API handlers. receipts may be nil.
func New(store Store, sms Notifier, receipts ReceiptSender) *Handler {
	return &Handler{store: store, sms: sms, receipts: receipts}
}

// page is the data every template receives.
type page struct {
	Title     string
	LoggedIn  bool
	Notice    *session.Notice
	User      *models.User
	Customers []models.Customer
	Orders    []models.Order
}

// render pops the pending notice into p, saves the session and writes the
// named template.
func render(c *gin.Context, status int, name string, p page) {
	if notice, ok := session.PopNotice(c); ok && p.Notice == nil {
		p.Notice = &notice
	}
	if err := session.Save(c); err != nil {
		logger.FromContext(c.Request.Context()).Error("save session", "error", err)
	}
	c.HTML(status, name, p)
}

// backToDashboard queues a notice and redirects to the dashboard.
func backToDashboard(c *gin.Context, level, message string) {
	session.Flash(c, level, message)
	if err := session.Save(c); err != nil {
		logger.FromContext(c.Request.Context()).Error("save session", "error", err)
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// GET /
func (h *Handler) Index(c *gin.Context) {
	render(c, http.StatusOK, "index.tmpl", page{
		Title:    "Welcome",
		LoggedIn: session.UserID(c) != 0,
	})
}

// GET /dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	user, _ := auth.CurrentUser(c)

	p := page{Title: "Dashboard", LoggedIn: true, User: user}

	customers, err := h.store.CustomersForUser(ctx, user.ID)
	if err == nil {
		p.Orders, err = h.store.OrdersForUser(ctx, user.ID)
	}
	if err != nil {
		logger.FromContext(ctx).Error("load dashboard", "user_id", user.ID, "error", err)
		p.Notice = &session.Notice{Level: session.Error, Message: "Error loading dashboard. Please try again."}
		p.Orders = nil
		render(c, http.StatusInternalServerError, "dashboard.tmpl", p)
		return
	}
	p.Customers = customers

	render(c, http.StatusOK, "dashboard.tmpl", p)
}

// GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Service is running"})
}
