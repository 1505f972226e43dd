package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tourneybase-web/internal/session"

	"github.com/gin-gonic/gin"
)

// sessionKey is the gin context key the resolved session is stored under.
const sessionKey = "tb_session"

// sessionReadyTimeout bounds how long a request waits for an in-flight
// bootstrap before rendering the loading state.
const sessionReadyTimeout = 5 * time.Second

// RequireSession resolves the session cookie to a live Session and
// blocks until its bootstrap settles. Requests without a valid session
// are redirected to the login view; the destination is self-explanatory,
// so no message is attached.
func RequireSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := cookieValue(c)

		sess, err := manager.Resolve(c.Request.Context(), sid)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
					"error": "session lookup failed",
				})
				return
			}
			redirectToLogin(c)
			return
		}

		waitCtx, cancel := context.WithTimeout(c.Request.Context(), sessionReadyTimeout)
		_ = sess.WaitReady(waitCtx)
		cancel()

		if sess.CurrentIdentity() == nil && !sess.IsLoading() {
			// bootstrap resolved to logged-out (credential rejected or
			// revoked): drop the cookie binding and start over
			manager.Terminate(c.Request.Context(), sid)
			redirectToLogin(c)
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFromContext extracts the session attached by RequireSession.
func SessionFromContext(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

func cookieValue(c *gin.Context) string {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func redirectToLogin(c *gin.Context) {
	if wantsJSON(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"redirect": "/login",
		})
		return
	}
	c.Redirect(http.StatusFound, "/login")
	c.Abort()
}

func wantsJSON(c *gin.Context) bool {
	return c.GetHeader("Accept") == "application/json" ||
		c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
