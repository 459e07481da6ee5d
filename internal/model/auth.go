package model

// Identity is the authenticated caller resolved from an access token.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
}

// IsAdmin reports whether the caller holds the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// LoginRequest represents a username/password token request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token to exchange for a new access token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenPair is returned on login and registration.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AccessResponse is returned on token refresh.
type AccessResponse struct {
	Access string `json:"access"`
}
