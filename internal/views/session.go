package views

import (
	"net/http"

	"tourneybase-web/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Session exposes the {identity, profile, loading} triple so the shell
// can observe bootstrap progress. While loading is true, absence of
// identity or profile is not final.
func (h *Handler) Session(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"redirect": "/login"})
		return
	}

	id, profile, loading := sess.Snapshot()

	payload := gin.H{
		"loading": loading,
		"profile": profile,
	}
	if id != nil {
		payload["identity"] = gin.H{
			"provider": id.Provider,
			"email":    id.Email,
			"name":     id.Name,
		}
	}

	c.JSON(http.StatusOK, payload)
}
