package views

import (
	"net/http"
	"sync"

	"tourneybase-web/internal/domain"

	"github.com/gin-gonic/gin"
)

// Tournaments renders the browse view from the dashboard aggregate's
// upcoming-tournament list.
func (h *Handler) Tournaments(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	payload := gin.H{"view": "tournaments"}

	data, err := sess.API().Dashboard(c.Request.Context())
	if err != nil {
		if unauthorizedRedirect(c, err) {
			return
		}
		payload["notice"] = errNotice("Failed to load tournaments")
	} else {
		payload["tournaments"] = data.UpcomingTournaments
	}

	c.JSON(http.StatusOK, payload)
}

// TournamentDetail joins the tournament resource with the caller's teams
// to mark which are eligible for its trust-score threshold. The two
// fetches are independent and allowed to race; the view's loading state
// is the AND of both.
func (h *Handler) TournamentDetail(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	api := sess.API()
	ctx := c.Request.Context()

	var (
		wg sync.WaitGroup

		tournament    *domain.Tournament
		tournamentErr error
		data          *domain.Dashboard
		dataErr       error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tournament, tournamentErr = api.Tournament(ctx, c.Param("id"))
	}()
	go func() {
		defer wg.Done()
		data, dataErr = api.Dashboard(ctx)
	}()
	wg.Wait()

	if tournamentErr != nil {
		if unauthorizedRedirect(c, tournamentErr) {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"view":   "tournament",
			"notice": errNotice("Failed to load tournament"),
		})
		return
	}

	payload := gin.H{
		"view":       "tournament",
		"tournament": tournament,
	}

	if dataErr != nil {
		payload["notice"] = errNotice("Failed to load your teams")
	} else {
		payload["eligibleTeams"] = eligibleTeams(data.Teams, tournament.TrustScoreThreshold)
		payload["teams"] = data.Teams
	}

	c.JSON(http.StatusOK, payload)
}

// eligibleTeams filters to teams whose average trust score clears the
// tournament's threshold.
func eligibleTeams(teams []domain.Team, threshold int) []domain.Team {
	eligible := make([]domain.Team, 0, len(teams))
	for _, t := range teams {
		if t.AverageTrustScore >= float64(threshold) {
			eligible = append(eligible, t)
		}
	}
	return eligible
}

// TournamentApply registers a team for a tournament.
func (h *Handler) TournamentApply(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	var in struct {
		TeamID string `json:"teamId"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.TeamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamId is required"})
		return
	}

	if err := sess.API().ApplyTournament(c.Request.Context(), c.Param("id"), in.TeamID); err != nil {
		mutationFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redirect": "/my-tournaments",
		"message":  "Registration submitted",
	})
}

// MyTournaments lists the caller's tournament registrations.
func (h *Handler) MyTournaments(c *gin.Context) {
	sess, ok := h.guard(c)
	if !ok {
		return
	}

	payload := gin.H{"view": "my-tournaments"}

	regs, err := sess.API().MyTournaments(c.Request.Context())
	if err != nil {
		if unauthorizedRedirect(c, err) {
			return
		}
		payload["notice"] = errNotice("Failed to load your registrations")
	} else {
		payload["registrations"] = regs
	}

	c.JSON(http.StatusOK, payload)
}
