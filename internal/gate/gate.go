// Package gate decides whether protected content may render for the
// current principal, based on the profile's verification status.
package gate

import (
	"context"

	"tourneybase-web/internal/domain"
	"tourneybase-web/internal/logger"
	"tourneybase-web/internal/session"
)

// Kind enumerates the four possible gate outcomes.
type Kind string

const (
	ShowLoading  Kind = "loading"
	ShowPending  Kind = "pending"
	ShowRejected Kind = "rejected"
	ShowContent  Kind = "content"
)

// Decision is the single outcome of a gate evaluation. Views render
// based on the Decision and never re-derive navigation targets ad hoc.
type Decision struct {
	Kind   Kind                      `json:"kind"`
	Status domain.VerificationStatus `json:"status,omitempty"`
}

// Evaluate inspects the session and performs the gate-local verification
// status fetch. A transient status-fetch failure degrades to the pending
// card rather than an error page; previously rendered content is never
// replaced by a crash.
func Evaluate(ctx context.Context, sess *session.Session) Decision {
	if sess.IsLoading() {
		return Decision{Kind: ShowLoading}
	}

	if sess.CurrentProfile() == nil {
		// no profile yet: status is unknowable, treat as not approved
		return Decision{Kind: ShowPending}
	}

	state, err := sess.API().KYCStatus(ctx)
	if err != nil {
		logger.Error("failed to fetch verification status", map[string]any{
			"error": err.Error(),
		})
		return Decision{Kind: ShowPending, Status: domain.StatusPending}
	}

	return Decide(state.Status)
}

// Decide maps a verification status to a Decision. Total: every status
// string, including unrecognized ones, produces exactly one outcome.
func Decide(status domain.VerificationStatus) Decision {
	switch status {
	case domain.StatusRejected:
		return Decision{Kind: ShowRejected, Status: status}
	case domain.StatusApproved:
		return Decision{Kind: ShowContent, Status: status}
	default:
		return Decision{Kind: ShowPending, Status: status}
	}
}
