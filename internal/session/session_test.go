package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Keoroanthony/go-ordertrack/internal/session"
	"github.com/Keoroanthony/go-ordertrack/internal/session/sessiontest"
)

// step runs fn against a request carrying ck and returns the response.
func step(t *testing.T, ck *http.Cookie, fn func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(session.Middleware(session.Options{Secret: sessiontest.Secret}))
	r.GET("/", func(c *gin.Context) {
		fn(c)
		require.NoError(t, session.Save(c))
		c.Status(http.StatusNoContent)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	r.ServeHTTP(recorder, req)
	return recorder
}

func TestLoginAndLogout(t *testing.T) {
	var got uint
	step(t, sessiontest.LoggedIn(42), func(c *gin.Context) { got = session.UserID(c) })
	assert.Equal(t, uint(42), got)

	rec := step(t, sessiontest.LoggedIn(42), func(c *gin.Context) {
		session.Flash(c, session.Success, "bye")
		session.Logout(c)
	})

	var notice session.Notice
	var ok bool
	step(t, sessiontest.Cookie(rec), func(c *gin.Context) {
		got = session.UserID(c)
		notice, ok = session.PopNotice(c)
	})
	assert.Zero(t, got)
	require.True(t, ok, "logout must keep the pending notice")
	assert.Equal(t, session.Notice{Level: session.Success, Message: "bye"}, notice)
}

func TestNoticeIsOneShot(t *testing.T) {
	rec := step(t, nil, func(c *gin.Context) { session.Flash(c, session.Warning, "careful") })

	var ok bool
	second := step(t, sessiontest.Cookie(rec), func(c *gin.Context) { _, ok = session.PopNotice(c) })
	assert.True(t, ok)

	step(t, sessiontest.Cookie(second), func(c *gin.Context) { _, ok = session.PopNotice(c) })
	assert.False(t, ok)
}

func TestTakeState(t *testing.T) {
	var first, second string
	rec := step(t, sessiontest.WithState("abc"), func(c *gin.Context) { first = session.TakeState(c) })
	step(t, sessiontest.Cookie(rec), func(c *gin.Context) { second = session.TakeState(c) })

	assert.Equal(t, "abc", first)
	assert.Empty(t, second)
}

func TestTamperedCookieIsIgnored(t *testing.T) {
	ck := sessiontest.LoggedIn(7)
	ck.Value = "x" + ck.Value

	var got uint
	step(t, ck, func(c *gin.Context) { got = session.UserID(c) })
	assert.Zero(t, got)
}
