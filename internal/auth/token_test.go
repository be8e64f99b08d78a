package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gestion/authsvc/internal/model"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer("test-secret", "authsvc-test", 10*time.Hour, 7*24*time.Hour)
}

func strPtr(s string) *string { return &s }

func TestIssueAccess_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	grant := AccessGrant{
		UserID:     "user-123",
		RoleID:     3,
		ProfileID:  1,
		BranchID:   7,
		BranchName: strPtr("Casa Matriz"),
	}

	tok, err := issuer.IssueAccess(grant)
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	claims, err := issuer.Parse(tok, model.TokenTypeAccess)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want user-123", claims.Subject)
	}
	if claims.RoleID != 3 || claims.ProfileID != 1 || claims.BranchID != 7 {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.BranchName == nil || *claims.BranchName != "Casa Matriz" {
		t.Errorf("branch name claim = %v", claims.BranchName)
	}
	if claims.Version != ClaimsVersion {
		t.Errorf("version = %d, want %d", claims.Version, ClaimsVersion)
	}
	if claims.ID == "" {
		t.Error("jti should be set")
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 10*time.Hour {
		t.Errorf("access ttl = %s, want 10h", ttl)
	}

	ac := claims.AuthContext()
	if ac.UserID != "user-123" || ac.BranchID != 7 || ac.IsRefresh() {
		t.Errorf("unexpected auth context: %+v", ac)
	}
}

func TestIssueRefresh_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	tok, err := issuer.IssueRefresh("user-9")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	claims, err := issuer.Parse(tok, model.TokenTypeRefresh)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if claims.Subject != "user-9" {
		t.Errorf("subject = %q, want user-9", claims.Subject)
	}
	if claims.RoleID != 0 || claims.BranchName != nil {
		t.Errorf("refresh token must carry identity only, got %+v", claims)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != 7*24*time.Hour {
		t.Errorf("refresh ttl = %s, want 168h", ttl)
	}
}

func TestParse_TokenTypeMismatch(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()

	refresh, _ := issuer.IssueRefresh("u1")
	if _, err := issuer.Parse(refresh, model.TokenTypeAccess); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("refresh as access: got %v, want ErrWrongTokenType", err)
	}

	access, _ := issuer.IssueAccess(AccessGrant{UserID: "u1"})
	if _, err := issuer.Parse(access, model.TokenTypeRefresh); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("access as refresh: got %v, want ErrWrongTokenType", err)
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-11 * time.Hour) }

	tok, err := issuer.IssueAccess(AccessGrant{UserID: "u1"})
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	issuer.now = time.Now
	if _, err := issuer.Parse(tok, model.TokenTypeAccess); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _ := NewTokenIssuer("right-secret", "authsvc-test", time.Hour, 2*time.Hour).IssueAccess(AccessGrant{UserID: "u1"})

	_, err := NewTokenIssuer("wrong-secret", "authsvc-test", time.Hour, 2*time.Hour).Parse(tok, model.TokenTypeAccess)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParse_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, _ := NewTokenIssuer("s", "other", time.Hour, 2*time.Hour).IssueAccess(AccessGrant{UserID: "u1"})

	_, err := NewTokenIssuer("s", "authsvc-test", time.Hour, 2*time.Hour).Parse(tok, model.TokenTypeAccess)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestParse_RejectsNoneAndOtherAlgorithms(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	claims := Claims{
		Type:    model.TokenTypeAccess,
		Version: ClaimsVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "authsvc-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := issuer.Parse(none, model.TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("alg=none: expected ErrTokenInvalid, got %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign hs512: %v", err)
	}
	if _, err := issuer.Parse(hs512, model.TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("alg=HS512: expected ErrTokenInvalid, got %v", err)
	}
}

func TestParse_UnknownClaimsVersion(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	claims := Claims{
		Type:    model.TokenTypeAccess,
		Version: ClaimsVersion + 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "authsvc-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))

	if _, err := issuer.Parse(tok, model.TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for unknown version, got %v", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := newTestIssuer().Parse("not-a-jwt", model.TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestIssue_RequiresUserID(t *testing.T) {
	t.Parallel()

	issuer := newTestIssuer()
	if _, err := issuer.IssueAccess(AccessGrant{}); err == nil {
		t.Error("IssueAccess without user id should fail")
	}
	if _, err := issuer.IssueRefresh(""); err == nil {
		t.Error("IssueRefresh without user id should fail")
	}
}

func TestGrantFor(t *testing.T) {
	t.Parallel()

	u := &model.AuthUser{
		User: model.User{
			ID:             "u1",
			RoleID:         2,
			ProfileID:      4,
			ActiveBranchID: 9,
		},
		BranchName: strPtr("Norte"),
	}

	g := GrantFor(u)
	if g.UserID != "u1" || g.RoleID != 2 || g.ProfileID != 4 || g.BranchID != 9 || *g.BranchName != "Norte" {
		t.Errorf("unexpected grant: %+v", g)
	}
}
