// Package sessiontest forges session cookies for handler tests.
package sessiontest

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/Keoroanthony/go-ordertrack/internal/session"
)

// Secret signs every cookie produced here; routers under test must use it.
const Secret = "test-secret-key"

// LoggedIn returns a session cookie for userID.
func LoggedIn(userID uint) *http.Cookie {
	return forge(func(c *gin.Context) { session.Login(c, userID) })
}

// WithState returns an anonymous session cookie holding an OAuth state.
func WithState(state string) *http.Cookie {
	return forge(func(c *gin.Context) { session.SetState(c, state) })
}

// forge runs the session middleware on a throwaway context, applies fn and
// copies the resulting cookie out.
func forge(fn func(c *gin.Context)) *http.Cookie {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	session.Middleware(session.Options{Secret: Secret})(tempC)

	fn(tempC)
	_ = session.Save(tempC)

	return Cookie(tempW)
}

// Cookie returns the last session cookie set on rec, or nil.
func Cookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var last *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.Name {
			last = ck
		}
	}
	return last
}
