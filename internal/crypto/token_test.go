package crypto

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/taskmanager/taskmanager-go/internal/model"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestIssuer(secret string) (*TokenIssuer, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	return NewTokenIssuer(secret, 5*time.Minute, 24*time.Hour).WithClock(clock.Now), clock
}

func testUser() *model.User {
	return &model.User{ID: 42, Username: "alice", Role: model.RoleStandard}
}

func TestIssueAndValidate(t *testing.T) {
	issuer, _ := newTestIssuer("test-secret")

	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("Issue() returned an empty token")
	}
	if pair.Access == pair.Refresh {
		t.Error("Issue() access and refresh tokens are identical")
	}

	id, err := issuer.Validate(pair.Access)
	if err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	want := model.Identity{UserID: 42, Username: "alice", Role: model.RoleStandard}
	if id != want {
		t.Errorf("Validate() = %+v, want %+v", id, want)
	}
}

func TestIssueDistinctExpiry(t *testing.T) {
	issuer, clock := newTestIssuer("test-secret")

	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{name: "access", token: pair.Access, want: clock.t.Add(5 * time.Minute)},
		{name: "refresh", token: pair.Refresh, want: clock.t.Add(24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := &Claims{}
			if _, _, err := jwt.NewParser().ParseUnverified(tt.token, claims); err != nil {
				t.Fatalf("ParseUnverified() unexpected error: %v", err)
			}
			if !claims.ExpiresAt.Time.Equal(tt.want) {
				t.Errorf("exp = %v, want %v", claims.ExpiresAt.Time, tt.want)
			}
			if claims.ID == "" {
				t.Error("jti claim is empty")
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	issuer, clock := newTestIssuer("test-secret")
	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	other, _ := newTestIssuer("other-secret")
	foreign, err := other.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		advance time.Duration
		wantErr error
	}{
		{name: "malformed", token: "not-a-valid-token", wantErr: ErrInvalidToken},
		{name: "empty", token: "", wantErr: ErrInvalidToken},
		{name: "wrong secret", token: foreign.Access, wantErr: ErrInvalidToken},
		{name: "tampered", token: tamper(pair.Access), wantErr: ErrInvalidToken},
		{name: "refresh used as access", token: pair.Refresh, wantErr: ErrInvalidToken},
		{name: "expired", token: pair.Access, advance: 6 * time.Minute, wantErr: ErrExpiredToken},
	}

	start := clock.t
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = start.Add(tt.advance)
			_, err := issuer.Validate(tt.token)
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	issuer, clock := newTestIssuer("test-secret")
	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	// The original access token has lapsed but the refresh token has not.
	clock.Advance(time.Hour)

	userID, err := issuer.RefreshSubject(pair.Refresh)
	if err != nil {
		t.Fatalf("RefreshSubject() unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("RefreshSubject() = %d, want 42", userID)
	}

	access, err := issuer.IssueAccess(&model.User{ID: userID, Username: "alice-renamed", Role: model.RoleStandard})
	if err != nil {
		t.Fatalf("IssueAccess() unexpected error: %v", err)
	}
	id, err := issuer.Validate(access)
	if err != nil {
		t.Fatalf("Validate() on refreshed token unexpected error: %v", err)
	}
	if id.UserID != 42 || id.Username != "alice-renamed" {
		t.Errorf("Validate() = %+v, want subject 42/alice-renamed", id)
	}
}

func TestRefreshRejects(t *testing.T) {
	issuer, clock := newTestIssuer("test-secret")
	pair, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue() unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		advance time.Duration
		wantErr error
	}{
		{name: "tampered", token: tamper(pair.Refresh), wantErr: ErrInvalidToken},
		{name: "access used as refresh", token: pair.Access, wantErr: ErrInvalidToken},
		{name: "expired", token: pair.Refresh, advance: 25 * time.Hour, wantErr: ErrExpiredToken},
	}

	start := clock.t
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.t = start.Add(tt.advance)
			userID, err := issuer.RefreshSubject(tt.token)
			if err != tt.wantErr {
				t.Errorf("RefreshSubject() error = %v, want %v", err, tt.wantErr)
			}
			if userID != 0 {
				t.Errorf("RefreshSubject() = %d on error, want 0", userID)
			}
		})
	}
}

func TestValidateWrongIssuer(t *testing.T) {
	secret := "test-secret"
	issuer, clock := newTestIssuer(secret)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wrong-issuer",
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(clock.t),
		},
		TokenType: TokenAccess,
		UserID:    42,
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := issuer.Validate(tokenString); err != ErrInvalidToken {
		t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
	}
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	issuer, clock := newTestIssuer("test-secret")

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
		TokenType: TokenAccess,
		UserID:    42,
		Role:      model.RoleAdmin,
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() unexpected error: %v", err)
	}

	if _, err := issuer.Validate(tokenString); err != ErrInvalidToken {
		t.Errorf("Validate() error = %v, want %v", err, ErrInvalidToken)
	}
}

// tamper flips one character of the signature segment.
func tamper(token string) string {
	i := strings.LastIndex(token, ".") + 1
	b := []byte(token)
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	return string(b)
}
