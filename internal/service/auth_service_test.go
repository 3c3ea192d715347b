package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

const authTestSecret = "test-secret"

func signSessionToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthServiceVerifyToken(t *testing.T) {
	t.Run("ValidToken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		userRepo := mocks.NewMockUserRepository(ctrl)
		svc := NewAuthService(userRepo, authTestSecret, newTestLogger(ctrl))

		token := signSessionToken(t, authTestSecret, jwt.MapClaims{
			"sub": "user_2abc",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		userRepo.EXPECT().GetByClerkID(gomock.Any(), "user_2abc").
			Return(&domain.User{ID: "u-1", ClerkUserID: "user_2abc", IsAdmin: true}, nil)

		user, err := svc.VerifyToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.True(t, user.IsAdmin)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuthService(mocks.NewMockUserRepository(ctrl), authTestSecret, newTestLogger(ctrl))

		token := signSessionToken(t, authTestSecret, jwt.MapClaims{
			"sub": "user_2abc",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := svc.VerifyToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuthService(mocks.NewMockUserRepository(ctrl), authTestSecret, newTestLogger(ctrl))

		token := signSessionToken(t, "other-secret", jwt.MapClaims{
			"sub": "user_2abc",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.VerifyToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	})

	t.Run("UnsignedTokenRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc := NewAuthService(mocks.NewMockUserRepository(ctrl), authTestSecret, newTestLogger(ctrl))

		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "user_2abc",
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.VerifyToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		userRepo := mocks.NewMockUserRepository(ctrl)
		svc := NewAuthService(userRepo, authTestSecret, newTestLogger(ctrl))

		token := signSessionToken(t, authTestSecret, jwt.MapClaims{
			"sub": "user_gone",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		userRepo.EXPECT().GetByClerkID(gomock.Any(), "user_gone").
			Return(nil, &domain.ErrUserNotFound{ID: "user_gone"})

		_, err := svc.VerifyToken(context.Background(), token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	})
}

func TestAuthServiceImpersonation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc := NewAuthService(mocks.NewMockUserRepository(ctrl), authTestSecret, newTestLogger(ctrl))

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := svc.IssueImpersonationToken("admin-1", "partner-1")
		require.NoError(t, err)

		partnerID, err := svc.VerifyImpersonationToken(token)
		require.NoError(t, err)
		assert.Equal(t, "partner-1", partnerID)
	})

	t.Run("SessionTokenNotAccepted", func(t *testing.T) {
		// a plain session token lacks the impersonation purpose claim
		token := signSessionToken(t, authTestSecret, jwt.MapClaims{
			"sub": "partner-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := svc.VerifyImpersonationToken(token)
		assert.ErrorIs(t, err, domain.ErrSessionInvalid)
	})
}
