package crypto

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

const (
	tokenIssuer   = "taskmanager"
	tokenAudience = "taskmanager-api"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token is expired")
)

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims represents the JWT claims carried by both token kinds.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType  `json:"token_type"`
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
}

// Identity returns the caller identity the claims were minted for.
func (c *Claims) Identity() model.Identity {
	return model.Identity{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

// TokenIssuer mints and verifies HS256 access/refresh tokens. It holds no
// mutable state and is safe for concurrent use.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer creates a TokenIssuer signing with secret.
func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock returns a copy of the issuer reading time from now.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	cp := *ti
	cp.now = now
	return &cp
}

// Issue mints an access and a refresh token for user.
func (ti *TokenIssuer) Issue(user *model.User) (model.TokenPair, error) {
	access, err := ti.IssueAccess(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	id := model.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
	refresh, err := ti.sign(id, TokenRefresh, ti.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess mints a fresh access token for user.
func (ti *TokenIssuer) IssueAccess(user *model.User) (string, error) {
	id := model.Identity{UserID: user.ID, Username: user.Username, Role: user.Role}
	return ti.sign(id, TokenAccess, ti.accessTTL)
}

// RefreshSubject verifies a refresh token and returns the user id it was
// issued to. Username and role claims in the token are not trusted here.
func (ti *TokenIssuer) RefreshSubject(refreshToken string) (int64, error) {
	claims, err := ti.parse(refreshToken, TokenRefresh)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Validate verifies a bearer access token and resolves the caller identity.
func (ti *TokenIssuer) Validate(accessToken string) (model.Identity, error) {
	claims, err := ti.parse(accessToken, TokenAccess)
	if err != nil {
		return model.Identity{}, err
	}
	return claims.Identity(), nil
}

func (ti *TokenIssuer) sign(id model.Identity, typ TokenType, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TokenType: typ,
		UserID:    id.UserID,
		Username:  id.Username,
		Role:      id.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

func (ti *TokenIssuer) parse(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
