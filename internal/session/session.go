// Package session wraps the signed cookie session used for the logged-in
// user, the OAuth state and the pending flash notice.
//
// Helpers only mutate the session. Handlers call Save exactly once, before
// writing the response, so each response carries a single cookie.
package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	Name = "gosess"

	userIDKey = "user_id"
	stateKey  = "oauth_state"
	noticeKey = "notice"
)

// Notice levels.
const (
	Success = "success"
	Warning = "warning"
	Error   = "error"
)

// Notice is a one-shot message shown on the next rendered page.
type Notice struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Notice{})
}

// Options controls the session cookie.
type Options struct {
	Secret string
	Secure bool
}

// Middleware installs the cookie store on the router.
func Middleware(opts Options) gin.HandlerFunc {
	store := cookie.NewStore([]byte(opts.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(Name, store)
}

// UserID returns the logged-in user id, or 0.
func UserID(c *gin.Context) uint {
	id, _ := sessions.Default(c).Get(userIDKey).(uint)
	return id
}

// Login stores userID as the session's user.
func Login(c *gin.Context, userID uint) {
	sess := sessions.Default(c)
	sess.Delete(stateKey)
	sess.Set(userIDKey, userID)
}

// Logout drops everything in the session except a pending notice.
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	notice := sess.Get(noticeKey)
	sess.Clear()
	if notice != nil {
		sess.Set(noticeKey, notice)
	}
}

// SetState remembers the OAuth state issued with a login redirect.
func SetState(c *gin.Context, state string) {
	sessions.Default(c).Set(stateKey, state)
}

// TakeState returns and forgets the pending OAuth state.
func TakeState(c *gin.Context) string {
	sess := sessions.Default(c)
	state, _ := sess.Get(stateKey).(string)
	sess.Delete(stateKey)
	return state
}

// Flash queues a notice for the next page, replacing any pending one.
func Flash(c *gin.Context, level, message string) {
	sessions.Default(c).Set(noticeKey, Notice{Level: level, Message: message})
}

// PopNotice returns and clears the pending notice.
func PopNotice(c *gin.Context) (Notice, bool) {
	sess := sessions.Default(c)
	notice, ok := sess.Get(noticeKey).(Notice)
	if !ok {
		return Notice{}, false
	}
	sess.Delete(noticeKey)
	return notice, true
}

// Save writes the session cookie. Call it before the response body.
func Save(c *gin.Context) error {
	return sessions.Default(c).Save()
}
