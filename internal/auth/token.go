package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/gestion/authsvc/internal/model"
)

// ClaimsVersion is bumped whenever the claim layout changes. Tokens carrying
// another version are rejected so login and refresh can never disagree on
// what a claim means.
const ClaimsVersion = 1

var (
	// ErrTokenExpired indicates the token's exp is in the past.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signatures, malformed tokens and unknown claim versions.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrWrongTokenType is returned when a refresh token is presented where an
	// access token is required, or vice versa.
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the fixed claim schema shared by access and refresh tokens.
// Branch, role and profile claims are only set on access tokens.
type Claims struct {
	Type       string  `json:"type"`
	Version    int     `json:"ver"`
	RoleID     int64   `json:"rol,omitempty"`
	ProfileID  int64   `json:"perfil,omitempty"`
	BranchID   int64   `json:"sucursal,omitempty"`
	BranchName *string `json:"sucursal_nombre,omitempty"`
	jwt.RegisteredClaims
}

// AccessGrant is the identity and authorization data embedded in an access token.
type AccessGrant struct {
	UserID     string
	RoleID     int64
	ProfileID  int64
	BranchID   int64
	BranchName *string
}

// GrantFor builds the access grant for a resolved user.
func GrantFor(u *model.AuthUser) AccessGrant {
	return AccessGrant{
		UserID:     u.ID,
		RoleID:     u.RoleID,
		ProfileID:  u.ProfileID,
		BranchID:   u.ActiveBranchID,
		BranchName: u.BranchName,
	}
}

// TokenIssuer signs and validates HS256 bearer tokens.
type TokenIssuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer.
func NewTokenIssuer(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// AccessTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration {
	return i.accessTTL
}

// IssueAccess signs a short-lived access token for the grant.
func (i *TokenIssuer) IssueAccess(g AccessGrant) (string, error) {
	if g.UserID == "" {
		return "", errors.New("user id required")
	}
	claims := Claims{
		Type:             model.TokenTypeAccess,
		Version:          ClaimsVersion,
		RoleID:           g.RoleID,
		ProfileID:        g.ProfileID,
		BranchID:         g.BranchID,
		BranchName:       g.BranchName,
		RegisteredClaims: i.registered(g.UserID, i.accessTTL),
	}
	return i.sign(claims)
}

// IssueRefresh signs a long-lived refresh token carrying only the identity.
func (i *TokenIssuer) IssueRefresh(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id required")
	}
	claims := Claims{
		Type:             model.TokenTypeRefresh,
		Version:          ClaimsVersion,
		RegisteredClaims: i.registered(userID, i.refreshTTL),
	}
	return i.sign(claims)
}

// Parse validates tokenString and checks that it is of the expected type.
func (i *TokenIssuer) Parse(tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if claims.Version != ClaimsVersion {
		return nil, fmt.Errorf("%w: unsupported claims version %d", ErrTokenInvalid, claims.Version)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.Type != expectedType {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

// AuthContext converts validated claims to a request identity.
func (c *Claims) AuthContext() *model.AuthContext {
	return &model.AuthContext{
		UserID:     c.Subject,
		TokenID:    c.ID,
		TokenType:  c.Type,
		RoleID:     c.RoleID,
		ProfileID:  c.ProfileID,
		BranchID:   c.BranchID,
		BranchName: c.BranchName,
	}
}

func (i *TokenIssuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		ID:        ulid.Make().String(),
		Subject:   subject,
		Issuer:    i.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (i *TokenIssuer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
