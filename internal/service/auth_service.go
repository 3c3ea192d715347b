package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/pkg/logger"
)

// AuthService verifies session tokens and issues impersonation tokens.
// Identity lives upstream in Clerk; tokens are HS256-signed with the shared
// application secret and carry the Clerk user id as subject.
type AuthService struct {
	userRepo domain.UserRepository
	secret   []byte
	logger   logger.Logger
}

func NewAuthService(userRepo domain.UserRepository, secret string, logger logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(secret),
		logger:   logger,
	}
}

func (s *AuthService) parseToken(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrSessionInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrSessionInvalid
	}

	return claims, nil
}

// VerifyToken validates a bearer token and resolves the local user record
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, domain.ErrSessionInvalid
	}

	user, err := s.userRepo.GetByClerkID(ctx, sub)
	if err != nil {
		s.logger.WithField("clerk_user_id", sub).Warn("session token for unknown user")
		return nil, domain.ErrSessionInvalid
	}

	return user, nil
}

// IssueImpersonationToken signs a short-lived token that lets an admin browse
// the portal as the given partner
func (s *AuthService) IssueImpersonationToken(adminUserID, partnerID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":     partnerID,
		"act":     adminUserID,
		"purpose": "impersonation",
		"iat":     now.Unix(),
		"exp":     now.Add(domain.ImpersonationTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign impersonation token: %w", err)
	}

	return token, nil
}

// VerifyImpersonationToken validates an impersonation cookie value and
// returns the impersonated partner id
func (s *AuthService) VerifyImpersonationToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}

	if purpose, _ := claims["purpose"].(string); purpose != "impersonation" {
		return "", domain.ErrSessionInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrSessionInvalid
	}

	return sub, nil
}
