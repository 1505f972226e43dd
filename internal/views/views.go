// Package views holds the view controllers, one per client route. Each
// controller waits for the session to settle, delegates protected
// rendering to the capability gate, and issues its own resource fetches
// through the session's backend client. View-models are rendered as JSON;
// presentation is the static shell's concern.
package views

import (
	"errors"
	"net/http"

	"tourneybase-web/internal/gate"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/identity/provider"
	"tourneybase-web/internal/middleware"
	"tourneybase-web/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	providers *provider.Registry
	manager   *session.Manager
}

func NewHandler(providers *provider.Registry, manager *session.Manager) *Handler {
	return &Handler{
		providers: providers,
		manager:   manager,
	}
}

// RegisterRoutes attaches all view controllers. Protected groups resolve
// the session first; the gate runs inside each protected controller.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/login", h.Login)
	r.GET("/oauth/login/:provider", h.OAuthLogin)
	r.GET("/oauth/callback/:provider", h.OAuthCallback)
	r.POST("/logout", h.Logout)

	authed := r.Group("/")
	authed.Use(middleware.RequireSession(h.manager))

	authed.GET("/session", h.Session)
	authed.GET("/setup-profile", h.SetupProfileView)
	authed.POST("/setup-profile", h.SetupProfileSubmit)
	authed.GET("/kyc", h.KYCView)
	authed.POST("/kyc", h.KYCSubmit)

	authed.GET("/dashboard", h.Dashboard)
	authed.POST("/team/create", h.TeamCreate)
	authed.POST("/team/join", h.TeamJoin)
	authed.GET("/team/:teamId", h.TeamDetail)
	authed.DELETE("/team/:teamId", h.TeamDelete)
	authed.DELETE("/team/:teamId/remove/:playerId", h.TeamRemoveMember)
	authed.GET("/tournaments", h.Tournaments)
	authed.GET("/tournament/:id", h.TournamentDetail)
	authed.POST("/tournament/:id/apply", h.TournamentApply)
	authed.GET("/my-tournaments", h.MyTournaments)
}

// guard runs the shared protected-view preamble: session from context,
// onboarding redirect when the profile does not exist yet, then the gate.
// Returns the session only when content may render.
func (h *Handler) guard(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return nil, false
	}

	if sess.CurrentProfile() == nil && !sess.IsLoading() {
		// expected absence: identity present, profile not created yet
		redirectView(c, "/setup-profile")
		return nil, false
	}

	decision := gate.Evaluate(c.Request.Context(), sess)
	if decision.Kind != gate.ShowContent {
		c.JSON(http.StatusOK, gin.H{
			"view":     "gate",
			"decision": decision,
		})
		return nil, false
	}

	return sess, true
}

// redirectView routes the browser (or the shell, for fetch requests) to
// another client view.
func redirectView(c *gin.Context, target string) {
	if c.Request.Method == http.MethodGet && c.GetHeader("Accept") != "application/json" {
		c.Redirect(http.StatusFound, target)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": target})
}

// unauthorizedRedirect routes to the login view when the backend
// rejected the credential on any call. The gateway's 401 hook has
// already begun terminating the session; the destination explains
// itself, so no message is attached.
func unauthorizedRedirect(c *gin.Context, err error) bool {
	if errors.Is(err, gateway.ErrUnauthorized) {
		redirectView(c, "/login")
		return true
	}
	return false
}

// failureMessage surfaces the server-provided error verbatim when
// present, else a generic fallback.
func failureMessage(err error) string {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return "Something went wrong. Please try again."
}

// notice is the transient, non-blocking notification attached to a
// view-model when a background fetch fails. Previously rendered data on
// the shell side is kept; the server never converts this into an error page.
type notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

func errNotice(message string) *notice {
	return &notice{Level: "error", Message: message}
}
