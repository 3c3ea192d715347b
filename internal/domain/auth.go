package domain

import (
	"context"
	"fmt"
	"time"
)

// contextKey scopes values this package stores in request contexts
type contextKey string

const (
	// AuthUserKey carries the authenticated *User
	AuthUserKey contextKey = "auth_user"
	// ImpersonatedPartnerKey carries the partner id an admin is browsing as
	ImpersonatedPartnerKey contextKey = "impersonated_partner"
)

// ImpersonationCookieName is the signed cookie an admin uses to browse the
// portal as a partner
const ImpersonationCookieName = "skyyield_impersonate"

// ImpersonationTTL bounds how long an impersonation cookie is honored
const ImpersonationTTL = time.Hour

// ErrSessionInvalid is returned for malformed or expired session tokens
var ErrSessionInvalid = fmt.Errorf("session token is invalid or expired")

// ErrForbidden is returned when the caller lacks the required role
var ErrForbidden = fmt.Errorf("forbidden")

// AuthService verifies session tokens and manages impersonation
type AuthService interface {
	// VerifyToken validates a bearer token and resolves the local user
	VerifyToken(ctx context.Context, token string) (*User, error)
	// IssueImpersonationToken signs a short-lived token identifying the
	// admin and the partner being impersonated
	IssueImpersonationToken(adminUserID, partnerID string) (string, error)
	// VerifyImpersonationToken validates an impersonation cookie value and
	// returns the impersonated partner id
	VerifyImpersonationToken(token string) (partnerID string, err error)
}

// UserFromContext returns the authenticated user stored by the auth middleware
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(AuthUserKey).(*User)
	return user, ok
}

// ImpersonatedPartnerFromContext returns the partner id an admin is browsing as
func ImpersonatedPartnerFromContext(ctx context.Context) (string, bool) {
	partnerID, ok := ctx.Value(ImpersonatedPartnerKey).(string)
	return partnerID, ok
}
