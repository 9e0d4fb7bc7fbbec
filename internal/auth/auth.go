package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Keoroanthony/go-ordertrack/internal/db"
	"github.com/Keoroanthony/go-ordertrack/internal/logger"
	"github.com/Keoroanthony/go-ordertrack/internal/models"
	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

const (
	currentUserKey = "current_user"

	loginFailedNotice   = "Authentication failed."
	notConfiguredNotice = "Google OAuth is not configured. Please contact administrator."
)

// UserStore resolves and records users.
type UserStore interface {
	FindOrCreateUser(ctx context.Context, profile models.User) (models.User, error)
	UserByID(ctx context.Context, id uint) (models.User, error)
}

// Handler serves the login flow and guards protected routes. A nil provider
// means login is not configured.
type Handler struct {
	provider Provider
	users    UserStore
}

func NewHandler(provider Provider, users UserStore) *Handler {
	return &Handler{provider: provider, users: users}
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

// GET /login
func (h *Handler) Login(c *gin.Context) {
	if h.provider == nil {
		session.Flash(c, session.Error, notConfiguredNotice)
		redirect(c, "/")
		return
	}

	state := uuid.NewString()
	session.SetState(c, state)
	redirect(c, h.provider.AuthCodeURL(state))
}

// GET /callback
func (h *Handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	expected := session.TakeState(c)

	if h.provider == nil {
		h.fail(c, "provider not configured", nil)
		return
	}
	if providerErr := c.Query("error"); providerErr != "" {
		h.fail(c, "provider returned error", errors.New(providerErr))
		return
	}

	code := c.Query("code")
	if code == "" {
		h.fail(c, "code missing", nil)
		return
	}
	if expected == "" || c.Query("state") != expected {
		h.fail(c, "state mismatch", nil)
		return
	}

	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.fail(c, "exchange failed", err)
		return
	}

	user, err := h.users.FindOrCreateUser(ctx, models.User{
		Subject: profile.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
	})
	if err != nil {
		h.fail(c, "user upsert failed", err)
		return
	}

	logger.FromContext(ctx).Info("user logged in", "user_id", user.ID)

	session.Login(c, user.ID)
	session.Flash(c, session.Success, "Welcome, "+user.Name+"!")
	redirect(c, "/dashboard")
}

// GET /logout
func (h *Handler) Logout(c *gin.Context) {
	session.Logout(c)
	session.Flash(c, session.Success, "You have been logged out successfully.")
	redirect(c, "/")
}

func (h *Handler) fail(c *gin.Context, reason string, err error) {
	log := logger.FromContext(c.Request.Context())
	if err != nil {
		log.Warn("login failed", "reason", reason, "error", err)
	} else {
		log.Warn("login failed", "reason", reason)
	}

	session.Flash(c, session.Error, loginFailedNotice)
	redirect(c, "/")
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// RequireAuth resolves the current user for page routes, redirecting to
// /login when there is none.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return h.require(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	})
}

// RequireAPIAuth resolves the current user for JSON routes, answering 401
// when there is none.
func (h *Handler) RequireAPIAuth() gin.HandlerFunc {
	return h.require(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	})
}

func (h *Handler) require(reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := session.UserID(c)
		if userID == 0 {
			reject(c)
			return
		}

		user, err := h.users.UserByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				session.Logout(c)
				_ = session.Save(c)
			} else {
				logger.FromContext(c.Request.Context()).Error("resolve current user", "user_id", userID, "error", err)
			}
			reject(c)
			return
		}

		c.Set(currentUserKey, &user)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth or RequireAPIAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// redirect saves the session and sends a 302 to location.
func redirect(c *gin.Context, location string) {
	if err := session.Save(c); err != nil {
		logger.FromContext(c.Request.Context()).Error("save session", "error", err)
	}
	c.Redirect(http.StatusFound, location)
}
