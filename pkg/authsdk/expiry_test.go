package authsdk

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// mintToken signs a throwaway HS256 token carrying claims.
func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestIsAccessTokenExpired(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{"exp": exp.Unix(), "sub": "ops"})

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before expiry", exp.Add(-time.Hour), false},
		{"31 seconds before expiry", exp.Add(-31 * time.Second), false},
		{"exactly at the buffer", exp.Add(-30 * time.Second), true},
		{"29 seconds before expiry", exp.Add(-29 * time.Second), true},
		{"after expiry", exp.Add(time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsAccessTokenExpired(token, tt.now))
		})
	}
}

func TestIsAccessTokenExpired_MissingExp(t *testing.T) {
	t.Parallel()

	token := mintToken(t, jwt.MapClaims{"sub": "ops"})
	require.True(t, IsAccessTokenExpired(token, time.Now()))

	token = mintToken(t, jwt.MapClaims{"exp": "tomorrow"})
	require.True(t, IsAccessTokenExpired(token, time.Now()))
}

func TestIsAccessTokenExpired_FailsOpen(t *testing.T) {
	t.Parallel()

	now := time.Now()
	rawURL := base64.RawURLEncoding.EncodeToString

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"no separators", "opaque-access-token"},
		{"two segments", "header.payload"},
		{"four segments", "a.b.c.d"},
		{"payload not base64", "h.!!!.s"},
		{"payload not json", "h." + rawURL([]byte("not json")) + ".s"},
		{"payload is null", "h." + rawURL([]byte("null")) + ".s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.False(t, IsAccessTokenExpired(tt.token, now))
		})
	}
}

func TestIsAccessTokenExpired_PaddedPayload(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1_700_000_000, 0)
	payload := base64.URLEncoding.EncodeToString([]byte(`{"exp":1700000000}`))
	token := "h." + payload + ".s"

	require.False(t, IsAccessTokenExpired(token, exp.Add(-time.Hour)))
	require.True(t, IsAccessTokenExpired(token, exp))
}

func TestManagerIsAccessTokenExpired_UsesClock(t *testing.T) {
	t.Parallel()

	exp := time.Unix(1_700_000_000, 0)
	token := mintToken(t, jwt.MapClaims{"exp": exp.Unix()})

	now := exp.Add(-time.Minute)
	m := NewManager(NewSDKClient("http://unused", ""), nil, WithClock(func() time.Time { return now }))
	require.False(t, m.IsAccessTokenExpired(token))

	now = exp.Add(-10 * time.Second)
	require.True(t, m.IsAccessTokenExpired(token))
}
