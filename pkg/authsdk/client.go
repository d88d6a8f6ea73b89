package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// AuthenticatePath is the login endpoint of the business backend.
	AuthenticatePath = "/api/External/AuthenticateUser"

	// RefreshPath is the token refresh endpoint of the business backend.
	RefreshPath = "/api/External/RefreshUserAccessToken"
)

// SDKClient talks to the unauthenticated endpoints of the business backend:
// login and token refresh. Authenticated calls go through a Manager.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIKey is sent as "key" on refresh requests. It is usually the key
	// returned by Authenticate, or one configured for the integration.
	APIKey string
}

// NewSDKClient creates a backend client with a 10 second request timeout.
func NewSDKClient(baseURL, apiKey string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		APIKey: apiKey,
	}
}

// URL builds a complete URL by appending the path to the base URL.
func (c *SDKClient) URL(path string) string {
	return c.BaseURL + path
}

// Authenticate exchanges user credentials for a token pair and API key.
func (c *SDKClient) Authenticate(
	ctx context.Context,
	emailOrPhone, password string,
) (*AuthenticateResponse, error) {
	resp, err := c.postJSON(ctx, AuthenticatePath, AuthenticateRequest{
		EmailOrPhone: emailOrPhone,
		Password:     password,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp)
	}

	var body envelope[AuthenticateResponse]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if body.Data == nil || !body.Data.Tokens().complete() {
		return nil, ErrIncompleteTokens
	}

	return body.Data, nil
}

// RefreshUserAccessToken exchanges the current pair for a new one. Any
// non-2xx status is returned as *APIError; a 2xx body without a complete pair
// in either supported shape yields ErrIncompleteTokens.
func (c *SDKClient) RefreshUserAccessToken(ctx context.Context, current TokenPair) (TokenPair, error) {
	resp, err := c.postJSON(ctx, RefreshPath, RefreshRequest{
		Key:          c.APIKey,
		RefreshToken: current.RefreshToken,
		Token:        current.AccessToken,
	})
	if err != nil {
		return TokenPair{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TokenPair{}, newAPIError(resp)
	}

	var body refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TokenPair{}, fmt.Errorf("failed to decode response: %w", err)
	}

	next, ok := body.pair()
	if !ok {
		return TokenPair{}, ErrIncompleteTokens
	}
	return next, nil
}

// postJSON sends v as a JSON body to path without any Authorization header.
func (c *SDKClient) postJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}
