package views

import (
	"net/http"

	"tourneybase-web/internal/logger"
	"tourneybase-web/internal/session"

	"github.com/gin-gonic/gin"
)

// Login renders the login view-model: the set of configured providers
// and where to send the browser for each.
func (h *Handler) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"view":      "login",
		"providers": h.providers.Names(),
	})
}

// OAuthLogin starts the authorization-code flow for one provider.
func (h *Handler) OAuthLogin(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown identity provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

// OAuthCallback finishes the flow: validates state, exchanges the code
// for an identity, and establishes the session. Establishing runs the
// bootstrap to completion, so by the time the browser lands on the next
// view the profile fetch has already settled.
func (h *Handler) OAuthCallback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown identity provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	if errParam := c.Query("error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)

	id, refreshToken, err := p.ExchangeCode(c.Request.Context(), code, codeVerifier)
	if err != nil {
		logger.Warn("code exchange failed", map[string]any{
			"provider": providerName,
			"error":    err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	sessionID, sess, expiresAt, err := h.manager.Establish(c.Request.Context(), id, refreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to create session",
		})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("signed in", map[string]any{
		"provider": providerName,
		"subject":  id.Subject,
	})

	// bootstrap already resolved: route by whether a profile exists
	if sess.CurrentProfile() == nil {
		c.Redirect(http.StatusFound, "/setup-profile")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout invalidates the session and clears the cookie. Idempotent: a
// second call with no cookie is still a 204.
func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		h.manager.Terminate(c.Request.Context(), cookie.Value)
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
