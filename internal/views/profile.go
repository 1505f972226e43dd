package views

import (
	"errors"
	"net/http"

	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupProfileView renders the onboarding form view-model. A principal
// who already has a profile is routed onward.
func (h *Handler) SetupProfileView(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	if sess.CurrentProfile() != nil {
		redirectView(c, "/dashboard")
		return
	}

	id := sess.CurrentIdentity()
	payload := gin.H{"view": "setup-profile"}
	if id != nil {
		payload["suggestedName"] = id.Name
		payload["email"] = id.Email
	}

	c.JSON(http.StatusOK, payload)
}

// SetupProfileSubmit validates and creates the profile. Validation
// failures annotate the offending fields and never reach the network.
func (h *Handler) SetupProfileSubmit(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"redirect": "/login"})
		return
	}

	var in domain.ProfileSetup
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if fieldErrs := domain.ValidateProfileSetup(in); len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Please fix the highlighted fields",
			"fields": fieldErrs,
		})
		return
	}

	profile, err := sess.API().CreateProfile(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"redirect": "/login"})
			return
		}
		mutationFailed(c, err)
		return
	}

	// the response is authoritative: no extra round trip
	sess.SetProfile(profile)

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"redirect": "/kyc",
		"message":  "Profile created! Let's verify your identity to continue",
	})
}

// mutationFailed surfaces a mutation error with the server's own message
// when it sent one.
func mutationFailed(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"redirect": "/login"})
		return
	}
	status := http.StatusBadGateway
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		status = statusErr.Code
	}
	c.JSON(status, gin.H{"error": failureMessage(err)})
}
