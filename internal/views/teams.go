package views

import (
	"errors"
	"net/http"
	"strings"

	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"

	"github.com/gin-gonic/gin"
)

// TeamCreate creates a team and surfaces the returned invite code
// verbatim, then refetches the profile so the new membership shows up.
func (h *Handler) TeamCreate(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	var in domain.TeamCreate
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if fieldErrs := domain.ValidateTeamCreate(in); len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Please fix the highlighted fields",
			"fields": fieldErrs,
		})
		return
	}

	created, err := sess.API().CreateTeam(c.Request.Context(), in)
	if err != nil {
		mutationFailed(c, err)
		return
	}

	// best effort: membership appears on the next explicit refetch
	_ = sess.RefetchProfile(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"teamId":     created.TeamID,
		"inviteCode": created.InviteCode,
		"redirect":   "/dashboard",
		"message":    "Team created! Your invite code: " + created.InviteCode,
	})
}

// TeamJoin joins a team by invite code.
func (h *Handler) TeamJoin(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	var in struct {
		InviteCode string `json:"inviteCode"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(in.InviteCode))
	if code == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Please enter a valid invite code",
		})
		return
	}

	if err := sess.API().JoinTeam(c.Request.Context(), code); err != nil {
		mutationFailed(c, err)
		return
	}

	// best effort: membership appears on the next explicit refetch
	_ = sess.RefetchProfile(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"redirect": "/dashboard",
		"message":  "Welcome to the team!",
	})
}

// TeamDetail renders one team's roster. The invite code is present only
// when the backend marks the caller as admin.
func (h *Handler) TeamDetail(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	team, err := sess.API().Team(c.Request.Context(), c.Param("teamId"))
	if err != nil {
		if unauthorizedRedirect(c, err) {
			return
		}
		if errors.Is(err, gateway.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{
				"view":   "team",
				"notice": errNotice("Team not found"),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"view":   "team",
			"notice": errNotice("Failed to load team"),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"view": "team",
		"team": team,
	})
}

// TeamDelete disbands a team, then refetches the profile so the removed
// membership disappears.
func (h *Handler) TeamDelete(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	if err := sess.API().DeleteTeam(c.Request.Context(), c.Param("teamId")); err != nil {
		mutationFailed(c, err)
		return
	}

	// best effort: stale membership disappears on the next refetch
	_ = sess.RefetchProfile(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"redirect": "/dashboard",
		"message":  "Team deleted",
	})
}

// TeamRemoveMember removes one roster member.
func (h *Handler) TeamRemoveMember(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	err := sess.API().RemoveMember(c.Request.Context(), c.Param("teamId"), c.Param("playerId"))
	if err != nil {
		mutationFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Player removed from team",
	})
}
