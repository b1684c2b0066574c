package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "ecommerce-auth-service"
	testAudience = "ecommerce-users"
)

func newTestManager() *TokenManager {
	return NewTokenManager(testSecret, testIssuer, testAudience, time.Hour, 7*24*time.Hour)
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	tm := newTestManager()

	token, exp, err := tm.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
	assert.Equal(t, domain.TokenKindAccess, claims.TokenType)
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	tm := newTestManager()

	token, _, err := tm.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)

	claims, err := tm.VerifyRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
	assert.Equal(t, domain.TokenKindRefresh, claims.TokenType)
}

func TestAccessTokenExpiry(t *testing.T) {
	expired := &TokenManager{
		secret:     []byte(testSecret),
		issuer:     testIssuer,
		audience:   testAudience,
		accessTTL:  -2 * time.Second,
		refreshTTL: time.Hour,
	}

	token, _, err := expired.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = expired.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	// Strictly before expiry the same claims verify fine.
	valid := newTestManager()
	token, _, err = valid.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)
	_, err = valid.VerifyAccessToken(token)
	assert.NoError(t, err)
}

func TestRefreshTokenExpiry(t *testing.T) {
	expired := &TokenManager{
		secret:     []byte(testSecret),
		issuer:     testIssuer,
		audience:   testAudience,
		accessTTL:  time.Hour,
		refreshTTL: -2 * time.Second,
	}

	token, _, err := expired.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)

	_, err = expired.VerifyRefreshToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// Claim-shape enforcement: the two token kinds are signed with the same key
// but must never be interchangeable.
func TestClaimShapeCrossRejection(t *testing.T) {
	tm := newTestManager()

	accessToken, _, err := tm.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)
	refreshToken, _, err := tm.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsWrongKeyAndGarbage(t *testing.T) {
	tm := newTestManager()
	other := NewTokenManager("other-secret", testIssuer, testAudience, time.Hour, time.Hour)

	token, _, err := other.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.VerifyAccessToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = tm.VerifyAccessToken("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

// An expired refresh token still names its session; extraction must accept
// it while rejecting everything a verify would reject for other reasons.
func TestExtractRefreshClaimsToleratesExpiry(t *testing.T) {
	tm := newTestManager()
	expired := &TokenManager{
		secret:     []byte(testSecret),
		issuer:     testIssuer,
		audience:   testAudience,
		accessTTL:  time.Hour,
		refreshTTL: -2 * time.Second,
	}

	token, _, err := expired.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)

	_, err = tm.VerifyRefreshToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)

	claims, err := tm.ExtractRefreshClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestExtractRefreshClaimsStillRejectsInvalidTokens(t *testing.T) {
	tm := newTestManager()

	_, err := tm.ExtractRefreshClaims("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	accessToken, _, err := tm.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)
	_, err = tm.ExtractRefreshClaims(accessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	wrongKey := NewTokenManager("other-secret", testIssuer, testAudience, time.Hour, time.Hour)
	token, _, err := wrongKey.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)
	_, err = tm.ExtractRefreshClaims(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	foreign := &TokenManager{
		secret:     []byte(testSecret),
		issuer:     "some-other-service",
		audience:   testAudience,
		accessTTL:  time.Hour,
		refreshTTL: -2 * time.Second,
	}
	token, _, err = foreign.IssueRefreshToken("user-1", "token-id-1")
	require.NoError(t, err)
	_, err = tm.ExtractRefreshClaims(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	tm := newTestManager()
	foreign := NewTokenManager(testSecret, "some-other-service", "some-other-audience", time.Hour, time.Hour)

	token, _, err := foreign.IssueAccessToken("user-1", "alice@example.com", domain.RoleCustomer)
	require.NoError(t, err)

	_, err = tm.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
