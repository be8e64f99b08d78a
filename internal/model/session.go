package model

// Token types carried in the "type" claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AuthContext is the verified identity attached to an authenticated request.
// Role, profile and branch fields are only populated from access tokens.
type AuthContext struct {
	UserID     string
	TokenID    string
	TokenType  string
	RoleID     int64
	ProfileID  int64
	BranchID   int64
	BranchName *string
}

// IsRefresh reports whether the request was authenticated with a refresh token.
func (a *AuthContext) IsRefresh() bool {
	return a.TokenType == TokenTypeRefresh
}
