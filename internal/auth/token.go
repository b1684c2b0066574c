package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Sentinel verification failures. Raw library errors stay inside this package.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenManager issues and validates signed JWT tokens. Verification is
// stateless: signature, expiry, issuer, audience and claim shape only.
type TokenManager struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessClaims is the payload shape of access tokens.
type AccessClaims struct {
	UserID    string           `json:"userId"`
	Email     string           `json:"email"`
	Role      domain.Role      `json:"role"`
	TokenType domain.TokenKind `json:"tokenType"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload shape of refresh tokens. It deliberately
// carries no email or role so a refresh token cannot stand in for an
// access token.
type RefreshClaims struct {
	UserID    string           `json:"userId"`
	TokenID   string           `json:"tokenId"`
	TokenType domain.TokenKind `json:"tokenType"`
	jwt.RegisteredClaims
}

// RefreshTTL exposes the refresh token lifetime for session bookkeeping.
func (tm *TokenManager) RefreshTTL() time.Duration {
	return tm.refreshTTL
}

// IssueAccessToken signs a short-lived access token for the user.
func (tm *TokenManager) IssueAccessToken(userID, email string, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.accessTTL)
	claims := &AccessClaims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		TokenType: domain.TokenKindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Audience:  jwt.ClaimStrings{tm.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken signs a long-lived refresh token. tokenID is unique per
// issuance.
func (tm *TokenManager) IssueRefreshToken(userID, tokenID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(tm.refreshTTL)
	claims := &RefreshClaims{
		UserID:    userID,
		TokenID:   tokenID,
		TokenType: domain.TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			Audience:  jwt.ClaimStrings{tm.audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken validates signature, expiry and access claim shape.
func (tm *TokenManager) VerifyAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != domain.TokenKindAccess || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// VerifyRefreshToken validates signature, expiry and refresh claim shape.
func (tm *TokenManager) VerifyRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := tm.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if err := checkRefreshShape(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExtractRefreshClaims validates signature and refresh claim shape but
// tolerates an elapsed expiry. Logout needs to name the session of a token
// that has already aged out; callers must never grant access based on claims
// obtained this way.
func (tm *TokenManager) ExtractRefreshClaims(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, tm.keyfunc,
		jwt.WithIssuer(tm.issuer), jwt.WithAudience(tm.audience))
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenInvalid
	}
	// Validation errors are joined, so an expired token may carry other
	// claim failures; re-check issuer and audience directly.
	if claims.Issuer != tm.issuer || !hasAudience(claims.Audience, tm.audience) {
		return nil, ErrTokenInvalid
	}
	if err := checkRefreshShape(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func hasAudience(audience jwt.ClaimStrings, want string) bool {
	for _, aud := range audience {
		if aud == want {
			return true
		}
	}
	return false
}

func checkRefreshShape(claims *RefreshClaims) error {
	if claims.TokenType != domain.TokenKindRefresh || claims.UserID == "" || claims.TokenID == "" {
		return ErrTokenInvalid
	}
	return nil
}

func (tm *TokenManager) keyfunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, ErrTokenInvalid
	}
	return tm.secret, nil
}

func (tm *TokenManager) parse(tokenStr string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, tm.keyfunc,
		jwt.WithIssuer(tm.issuer), jwt.WithAudience(tm.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !parsed.Valid {
		return ErrTokenInvalid
	}
	return nil
}
