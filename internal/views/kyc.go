package views

import (
	"net/http"

	"tourneybase-web/internal/gateway"
	"tourneybase-web/internal/middleware"

	"github.com/gin-gonic/gin"
)

// KYCView renders the document-submission view. It stays reachable while
// verification is pending or rejected; only the profile must exist.
func (h *Handler) KYCView(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	profile := sess.CurrentProfile()
	if profile == nil {
		redirectView(c, "/setup-profile")
		return
	}

	payload := gin.H{
		"view":    "kyc",
		"profile": profile,
	}

	state, err := sess.API().KYCStatus(c.Request.Context())
	if err != nil {
		if unauthorizedRedirect(c, err) {
			return
		}
		payload["notice"] = errNotice("Failed to fetch verification status")
	} else {
		payload["status"] = state.Status
	}

	c.JSON(http.StatusOK, payload)
}

// KYCSubmit forwards the uploaded documents to the backend as a
// multipart post. The response is an authoritative updated profile; the
// client does not assume which status the resubmission produced.
func (h *Handler) KYCSubmit(c *gin.Context) {
	sess, ok := middleware.SessionFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"redirect": "/login"})
		return
	}

	if sess.CurrentProfile() == nil {
		c.JSON(http.StatusOK, gin.H{"redirect": "/setup-profile"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	var files []gateway.FilePart
	for field, headers := range form.File {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
				return
			}
			defer f.Close()
			files = append(files, gateway.FilePart{
				Field:    field,
				Filename: header.Filename,
				Content:  f,
			})
		}
	}

	if len(files) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "At least one document is required",
		})
		return
	}

	fields := make(map[string]string, len(form.Value))
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	profile, err := sess.API().SubmitKYC(c.Request.Context(), fields, files)
	if err != nil {
		mutationFailed(c, err)
		return
	}

	sess.SetProfile(profile)

	c.JSON(http.StatusOK, gin.H{
		"profile":  profile,
		"redirect": "/dashboard",
		"message":  "Documents submitted for review",
	})
}
