package authsdk

// ============================================================================
// Token Types
// ============================================================================

// TokenPair is the credential held by a Manager. Both fields are non-empty
// whenever a pair is present, and a pair is always replaced as a whole.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// complete reports whether both halves of the pair are present.
func (p TokenPair) complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// ============================================================================
// Request Types
// ============================================================================

// AuthenticateRequest is the body of POST /api/External/AuthenticateUser.
type AuthenticateRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
}

// RefreshRequest is the body of POST /api/External/RefreshUserAccessToken.
type RefreshRequest struct {
	// Key is the backend API key configured for this integration
	Key string `json:"key"`

	// RefreshToken is the refresh half of the current pair
	RefreshToken string `json:"refreshToken"`

	// Token is the access half of the current pair
	Token string `json:"token"`
}

// ============================================================================
// Response Types
// ============================================================================

// AuthenticateResponse is the useful part of the AuthenticateUser response,
// which the backend wraps as {"data": {...}}.
type AuthenticateResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`

	// Key is the API key bound to the authenticated account
	Key string `json:"key"`
}

// Tokens returns the pair carried by the response.
func (r AuthenticateResponse) Tokens() TokenPair {
	return TokenPair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}

// envelope is the {"data": ...} wrapper the backend puts around payloads.
type envelope[T any] struct {
	Data *T `json:"data"`
}

// refreshResponse models both shapes the refresh endpoint has been observed to
// return. The wrapped shape wins; the top-level fields are the fallback. The
// fallback is per shape, not per field: an access token from data is never
// paired with a refresh token from the top level.
type refreshResponse struct {
	Data *TokenPair `json:"data"`
	TokenPair
}

// pair resolves the new tokens in order: data.{accessToken,refreshToken},
// then top-level {accessToken,refreshToken}. A shape only counts when both
// values are present.
func (r refreshResponse) pair() (TokenPair, bool) {
	if r.Data != nil && r.Data.complete() {
		return *r.Data, true
	}
	if r.TokenPair.complete() {
		return r.TokenPair, true
	}
	return TokenPair{}, false
}
