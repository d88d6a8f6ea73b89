package authsdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultRefreshTimeout bounds a single refresh call. Every caller waiting on
// the shared refresh is released no later than this.
const DefaultRefreshTimeout = 10 * time.Second

// refreshKey is the only key used with the single-flight group: there is one
// refresh operation per Manager.
const refreshKey = "refresh"

// Manager owns the access/refresh token pair of one backend session. It keeps
// the pair in memory and in a durable Storage, refreshes it when it is about
// to expire or the backend rejects it, and makes sure concurrent callers share
// a single refresh call.
type Manager struct {
	client         *SDKClient
	storage        Storage
	keys           StorageKeys
	logger         *slog.Logger
	now            func() time.Time
	refreshTimeout time.Duration

	mu     sync.RWMutex
	tokens *TokenPair // nil when no pair is held

	refreshes singleflight.Group

	login LoginFunc // nil: a lost session stays lost
}

// LoginFunc obtains a brand-new pair, typically by calling
// SDKClient.Authenticate with stored credentials.
type LoginFunc func(ctx context.Context) (TokenPair, error)

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for refresh and storage failures.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithRefreshTimeout bounds each refresh network call.
func WithRefreshTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.refreshTimeout = d
		}
	}
}

// WithLogin lets the Manager start a new session when it has none: when a
// refresh fails or finds no pair, login runs inside the same single flight
// and its pair replaces the lost one.
func WithLogin(login LoginFunc) ManagerOption {
	return func(m *Manager) { m.login = login }
}

// WithStorageKeys overrides the keys the pair is persisted under.
func WithStorageKeys(keys StorageKeys) ManagerOption {
	return func(m *Manager) { m.keys = keys }
}

// NewManager creates a Manager that refreshes through client and persists to
// storage. A nil storage keeps tokens in memory only.
func NewManager(client *SDKClient, storage Storage, opts ...ManagerOption) *Manager {
	if storage == nil {
		storage = NewMemoryStorage()
	}

	m := &Manager{
		client:         client,
		storage:        storage,
		keys:           DefaultStorageKeys(),
		logger:         slog.Default(),
		now:            time.Now,
		refreshTimeout: DefaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Tokens returns the current pair. When nothing is cached in memory the pair
// is loaded from storage, which only counts as a hit if both values are
// present. The second return value is false when no pair is available.
func (m *Manager) Tokens(ctx context.Context) (TokenPair, bool) {
	m.mu.RLock()
	if m.tokens != nil {
		pair := *m.tokens
		m.mu.RUnlock()
		return pair, true
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have loaded it)
	if m.tokens != nil {
		return *m.tokens, true
	}

	pair, err := m.load(ctx)
	if err != nil {
		m.logger.Warn("failed to load tokens from storage", "error", err)
		return TokenPair{}, false
	}
	if !pair.complete() {
		return TokenPair{}, false
	}

	m.tokens = &pair
	return pair, true
}

// SetTokens replaces the pair in memory and in storage. If storage cannot
// take both values, whatever was written is removed again so a restart never
// sees a mixed pair; the in-memory pair is kept.
func (m *Manager) SetTokens(ctx context.Context, pair TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = &pair

	err := m.storage.Set(ctx, m.keys.Access, pair.AccessToken)
	if err == nil {
		err = m.storage.Set(ctx, m.keys.Refresh, pair.RefreshToken)
	}
	if err != nil {
		_ = m.deleteStored(ctx)
		return fmt.Errorf("failed to persist tokens: %w", err)
	}
	return nil
}

// ClearTokens forgets the pair in memory and removes it from storage.
func (m *Manager) ClearTokens(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens = nil
	if err := m.deleteStored(ctx); err != nil {
		return fmt.Errorf("failed to remove tokens: %w", err)
	}
	return nil
}

// IsAccessTokenExpired checks token against the manager's clock.
func (m *Manager) IsAccessTokenExpired(token string) bool {
	return IsAccessTokenExpired(token, m.now())
}

// Refresh exchanges the current pair for a new one. Concurrent calls share
// one network call and its result. The second return value is false when
// there was no pair to refresh, when the refresh failed (the pair is then
// cleared everywhere), or when ctx ended before the shared refresh finished.
// With WithLogin, the first two cases log in again before giving up.
func (m *Manager) Refresh(ctx context.Context) (TokenPair, bool) {
	// The shared call must not die with whichever caller happened to start it.
	detached := context.WithoutCancel(ctx)

	ch := m.refreshes.DoChan(refreshKey, func() (any, error) {
		pair := m.refresh(detached)
		if !pair.complete() && m.login != nil {
			pair = m.relogin(detached)
		}
		return pair, nil
	})

	select {
	case res := <-ch:
		pair, _ := res.Val.(TokenPair)
		return pair, pair.complete()
	case <-ctx.Done():
		return TokenPair{}, false
	}
}

// refresh performs the network call. It never fails: every failure clears the
// pair and is reported as an empty TokenPair.
func (m *Manager) refresh(ctx context.Context) TokenPair {
	current, ok := m.Tokens(ctx)
	if !ok {
		return TokenPair{}
	}

	callCtx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	next, err := m.client.RefreshUserAccessToken(callCtx, current)
	if err != nil {
		m.logger.Warn("token refresh failed, clearing tokens", "error", err)
		if err := m.ClearTokens(ctx); err != nil {
			m.logger.Error("failed to clear tokens", "error", err)
		}
		return TokenPair{}
	}

	if err := m.SetTokens(ctx, next); err != nil {
		m.logger.Error("failed to persist refreshed tokens", "error", err)
	}
	m.logger.Debug("tokens refreshed")
	return next
}

// relogin runs the login hook, bounded like a refresh call.
func (m *Manager) relogin(ctx context.Context) TokenPair {
	callCtx, cancel := context.WithTimeout(ctx, m.refreshTimeout)
	defer cancel()

	pair, err := m.login(callCtx)
	if err == nil && !pair.complete() {
		err = ErrIncompleteTokens
	}
	if err != nil {
		m.logger.Error("login after lost session failed", "error", err)
		return TokenPair{}
	}

	if err := m.SetTokens(ctx, pair); err != nil {
		m.logger.Error("failed to persist login tokens", "error", err)
	}
	m.logger.Info("logged in again after lost session")
	return pair
}

// Do sends req with the session's bearer token. It merges a JSON
// Content-Type into the headers unless one is set, refreshes an expired
// access token before sending, and on a 401 or 403 refreshes once and
// resends the request once with the new token. Non-2xx responses are
// returned as-is; only transport errors are returned as errors.
func (m *Manager) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if err := makeReplayable(out); err != nil {
		return nil, err
	}
	if out.Header.Get("Content-Type") == "" {
		out.Header.Set("Content-Type", "application/json")
	}

	tokens, ok := m.Tokens(ctx)
	switch {
	case ok && m.IsAccessTokenExpired(tokens.AccessToken):
		tokens, ok = m.Refresh(ctx)
	case !ok && m.login != nil:
		tokens, ok = m.Refresh(ctx)
	}
	if ok {
		out.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	}

	resp, err := m.client.HTTPClient.Do(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	renewed, ok := m.Refresh(ctx)
	if !ok {
		return resp, nil
	}

	retry := out.Clone(ctx)
	if out.GetBody != nil {
		if retry.Body, err = out.GetBody(); err != nil {
			return resp, nil
		}
	}
	retry.Header.Set("Authorization", "Bearer "+renewed.AccessToken)

	// The rejected response is replaced by the retried one.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return m.client.HTTPClient.Do(retry)
}

func (m *Manager) load(ctx context.Context) (TokenPair, error) {
	access, err := m.storage.Get(ctx, m.keys.Access)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := m.storage.Get(ctx, m.keys.Refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (m *Manager) deleteStored(ctx context.Context) error {
	return errors.Join(
		m.storage.Delete(ctx, m.keys.Access),
		m.storage.Delete(ctx, m.keys.Refresh),
	)
}

// makeReplayable buffers a request body that cannot be re-created so the
// request can be sent twice.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return fmt.Errorf("failed to reset request body: %w", err)
		}
		req.Body = body
		return nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(buf))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	return nil
}
