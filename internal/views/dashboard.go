package views

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Dashboard renders the aggregate dashboard view. A failed data fetch
// degrades to a notice; the view stays interactive.
func (h *Handler) Dashboard(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	payload := gin.H{
		"view":    "dashboard",
		"profile": sess.CurrentProfile(),
	}

	data, err := sess.API().Dashboard(c.Request.Context())
	if err != nil {
		if unauthorizedRedirect(c, err) {
			return
		}
		payload["notice"] = errNotice("Failed to load dashboard data")
	} else {
		payload["data"] = data
	}

	c.JSON(http.StatusOK, payload)
}
