package domain

// VerificationStatus is the KYC review state attached to a profile.
// It is mutated server-side only; the client treats it as read-only.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusApproved VerificationStatus = "approved"
	StatusRejected VerificationStatus = "rejected"
)

// GameIDs holds the per-game account identifiers a player may link.
type GameIDs struct {
	BGMI           string `json:"bgmi,omitempty"`
	Valorant       string `json:"valorant,omitempty"`
	FreeFire       string `json:"freeFire,omitempty"`
	CounterStrike2 string `json:"counterStrike2,omitempty"`
}

// Profile is the application-level user record resolved from an identity.
// It exists only once the principal has completed profile setup on the
// backend; a 404 on fetch means "not created yet", not an error.
type Profile struct {
	ID         string             `json:"id"`
	FullName   string             `json:"fullName"`
	GamerTag   string             `json:"gamerTag"`
	Phone      string             `json:"phone,omitempty"`
	KYCStatus  VerificationStatus `json:"kycStatus"`
	TrustScore int                `json:"trustScore"`
	Teams      []TeamMembership   `json:"teams,omitempty"`
	GameIDs    GameIDs            `json:"gameIds"`
}

// TeamMembership is the profile-side view of a team the player belongs to.
type TeamMembership struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Game   string `json:"game"`
	Role   string `json:"role,omitempty"`
}

// Team is the summary form used in listings and eligibility checks.
type Team struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Game              string  `json:"game"`
	MemberCount       int     `json:"memberCount"`
	AverageTrustScore float64 `json:"averageTrustScore"`
	IsEligible        bool    `json:"isEligible"`
}

// TeamMember is a single roster entry on a team detail view.
type TeamMember struct {
	PlayerID   string `json:"playerId"`
	FullName   string `json:"fullName"`
	GamerTag   string `json:"gamerTag"`
	TrustScore int    `json:"trustScore"`
	IsCaptain  bool   `json:"isCaptain"`
}

// TeamDetail is the full team resource. InviteCode is present only when the
// backend recognizes the caller as the team admin.
type TeamDetail struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Game              string       `json:"game"`
	Members           []TeamMember `json:"members"`
	AverageTrustScore float64      `json:"averageTrustScore"`
	IsAdmin           bool         `json:"isAdmin"`
	InviteCode        string       `json:"inviteCode,omitempty"`
}

// Tournament mirrors the backend tournament resource.
type Tournament struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	Game                 string           `json:"game"`
	Status               string           `json:"status"`
	Description          string           `json:"description,omitempty"`
	Date                 string           `json:"date,omitempty"`
	MaxPlayers           int              `json:"maxPlayers,omitempty"`
	PrizePool            string           `json:"prizePool,omitempty"`
	TrustScoreThreshold  int              `json:"trustScoreThreshold"`
	Organizer            string           `json:"organizer,omitempty"`
	RegistrationDeadline string           `json:"registrationDeadline,omitempty"`
	CurrentRegistrations int              `json:"currentRegistrations,omitempty"`
	Location             string           `json:"location,omitempty"`
	Rules                []string         `json:"rules,omitempty"`
	Schedule             []TournamentSlot `json:"schedule,omitempty"`
}

// TournamentSlot is one stage row on a tournament schedule.
type TournamentSlot struct {
	Stage string `json:"stage"`
	Date  string `json:"date"`
	Teams string `json:"teams"`
}

// Registration is one entry in the caller's tournament application history.
type Registration struct {
	TournamentID string `json:"tournamentId"`
	Title        string `json:"title"`
	Game         string `json:"game"`
	TeamID       string `json:"teamId"`
	TeamName     string `json:"teamName"`
	Status       string `json:"status"`
	AppliedAt    string `json:"appliedAt,omitempty"`
}

// Dashboard is the aggregate payload backing the dashboard view.
type Dashboard struct {
	Teams               []Team         `json:"teams"`
	UpcomingTournaments []Tournament   `json:"upcomingTournaments"`
	Registrations       []Registration `json:"registrations"`
}

// KYCState is the response of the verification-status endpoint.
type KYCState struct {
	Status VerificationStatus `json:"status"`
}

// ProfileSetup is the payload submitted to create a profile.
type ProfileSetup struct {
	FullName string  `json:"fullName"`
	GamerTag string  `json:"gamerTag"`
	Phone    string  `json:"phone"`
	GameIDs  GameIDs `json:"gameIds"`
}

// TeamCreate is the payload submitted to create a team.
type TeamCreate struct {
	Name string `json:"name"`
	Game string `json:"game"`
}

// TeamCreated is the backend response to a successful team creation.
type TeamCreated struct {
	TeamID     string `json:"teamId"`
	InviteCode string `json:"inviteCode"`
}
