// Package backend wraps the gateway client with the typed endpoint surface
// of the TourneyBase REST API. Request and response bodies follow the
// backend's JSON contract; the backend remains the owner of the data model.
package backend

import (
	"context"
	"fmt"
	"net/url"

	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/gateway"
)

type Client struct {
	gw *gateway.Client
}

func New(gw *gateway.Client) *Client {
	return &Client{gw: gw}
}

// Player fetches the resolved profile for the current credential.
// Returns gateway.ErrNotFound when the profile has not been created yet.
func (c *Client) Player(ctx context.Context) (*domain.Profile, error) {
	var profile domain.Profile
	if err := c.gw.Get(ctx, "/api/player", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateProfile submits profile setup and returns the authoritative
// profile the backend created.
func (c *Client) CreateProfile(ctx context.Context, in domain.ProfileSetup) (*domain.Profile, error) {
	var profile domain.Profile
	if err := c.gw.Post(ctx, "/api/player", in, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) KYCStatus(ctx context.Context) (domain.KYCState, error) {
	var state domain.KYCState
	if err := c.gw.Get(ctx, "/api/player/kycStatus", &state); err != nil {
		return domain.KYCState{}, err
	}
	return state, nil
}

// SubmitKYC uploads verification documents and returns the updated profile.
func (c *Client) SubmitKYC(ctx context.Context, fields map[string]string, files []gateway.FilePart) (*domain.Profile, error) {
	var profile domain.Profile
	if err := c.gw.PostMultipart(ctx, "/api/player/kyc", fields, files, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) CreateTeam(ctx context.Context, in domain.TeamCreate) (*domain.TeamCreated, error) {
	var created domain.TeamCreated
	if err := c.gw.Post(ctx, "/api/player/createTeam", in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) JoinTeam(ctx context.Context, inviteCode string) error {
	body := map[string]string{"inviteCode": inviteCode}
	return c.gw.Post(ctx, "/api/player/joinTeam", body, nil)
}

func (c *Client) Team(ctx context.Context, teamID string) (*domain.TeamDetail, error) {
	var team domain.TeamDetail
	if err := c.gw.Get(ctx, "/api/player/team/"+url.PathEscape(teamID), &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *Client) DeleteTeam(ctx context.Context, teamID string) error {
	return c.gw.Delete(ctx, "/api/player/team/"+url.PathEscape(teamID))
}

func (c *Client) RemoveMember(ctx context.Context, teamID, playerID string) error {
	path := fmt.Sprintf("/api/player/team/%s/remove/%s",
		url.PathEscape(teamID), url.PathEscape(playerID))
	return c.gw.Delete(ctx, path)
}

func (c *Client) MyTournaments(ctx context.Context) ([]domain.Registration, error) {
	var regs []domain.Registration
	if err := c.gw.Get(ctx, "/api/player/my-tournaments", &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

func (c *Client) Tournament(ctx context.Context, id string) (*domain.Tournament, error) {
	var t domain.Tournament
	if err := c.gw.Get(ctx, "/api/tournament/"+url.PathEscape(id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ApplyTournament registers a team for a tournament.
func (c *Client) ApplyTournament(ctx context.Context, tournamentID, teamID string) error {
	path := "/api/player/tournament/" + url.PathEscape(tournamentID) + "/apply"
	body := map[string]string{"teamId": teamID}
	return c.gw.Post(ctx, path, body, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var d domain.Dashboard
	if err := c.gw.Get(ctx, "/api/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}
