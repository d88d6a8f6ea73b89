package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/washpay/internal/checkout/http"
	"github.com/aussiebroadwan/washpay/internal/checkout/service"
	"github.com/aussiebroadwan/washpay/internal/checkout/store"
	"github.com/aussiebroadwan/washpay/internal/checkout/store/drivers/redis"
	"github.com/aussiebroadwan/washpay/internal/checkout/store/drivers/sqlite"
	"github.com/aussiebroadwan/washpay/pkg/authsdk"
	"github.com/aussiebroadwan/washpay/pkg/cryptox"
	"github.com/aussiebroadwan/washpay/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// apiKeyStorageKey remembers the key learned from login next to the pair.
	apiKeyStorageKey = "apiKey"
)

// Application wires the checkout service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	tokenStore  store.KV
	tokenPinger httpapi.Pinger
	tokenCloser io.Closer

	client    *authsdk.SDKClient
	session   *authsdk.Manager
	refresher *authsdk.Refresher

	checkoutService     *service.CheckoutService
	callbackService     *service.CallbackService
	housekeepingService *service.HousekeepingService

	server  *http.Server
	router  *httpapi.Router
	started bool
}

// New creates a new Application with every dependency initialised and a
// backend session established.
func New(cfg Config) (*Application, error) {
	return newApplication(cfg, slogx.New(slogx.Config{
		Service: "checkout-service",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

func newApplication(cfg Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg, logger: logger}

	if err := app.initDatabase(); err != nil {
		_ = app.closeStores()
		return nil, err
	}
	if err := app.initTokenStore(); err != nil {
		_ = app.closeStores()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.initSession(ctx); err != nil {
		_ = app.closeStores()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.start()

	app.logger.Info("checkout service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.stop()
			_ = app.closeStores()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down checkout service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stop()

	if err := app.closeStores(); err != nil {
		app.logger.Error("error closing stores", "error", err)
		return err
	}

	app.logger.Info("checkout service stopped")
	return nil
}

// Handler exposes the router, mostly for tests.
func (app *Application) Handler() http.Handler {
	return app.router
}

func (app *Application) start() {
	app.housekeepingService.Start()
	app.refresher.Start()
	app.started = true
}

func (app *Application) stop() {
	if !app.started {
		return
	}
	app.refresher.Stop()
	app.housekeepingService.Stop()
	app.started = false
}

func (app *Application) closeStores() error {
	var errs []error
	if app.tokenCloser != nil {
		errs = append(errs, app.tokenCloser.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	return errors.Join(errs...)
}

// initDatabase opens the SQLite database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initTokenStore selects where the backend session is persisted and wraps it
// with sealing when a key is configured.
func (app *Application) initTokenStore() error {
	var kv store.KV
	switch app.cfg.TokenStore {
	case TokenStoreRedis:
		r, err := redis.New(context.Background(), redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		kv, app.tokenPinger, app.tokenCloser = r, r, r
	case TokenStoreMemory:
		kv = authsdk.NewMemoryStorage()
	default:
		kv = app.db.KV()
	}

	if app.cfg.StoreSealKey != "" {
		sealer, err := cryptox.NewSealer([]byte(app.cfg.StoreSealKey))
		if err != nil {
			return fmt.Errorf("failed to initialize token sealing: %w", err)
		}
		kv = store.NewSealedKV(kv, sealer)
	}

	app.tokenStore = kv
	app.logger.Info("token store ready", "driver", app.cfg.TokenStore, "sealed", app.cfg.StoreSealKey != "")
	return nil
}

// initSession reuses a stored session when its access token is still valid or
// can be refreshed, and logs in with the configured credentials otherwise.
func (app *Application) initSession(ctx context.Context) error {
	app.client = authsdk.NewSDKClient(app.cfg.BackendBaseURL, app.cfg.BackendAPIKey)
	opts := []authsdk.ManagerOption{
		authsdk.WithLogger(app.logger),
		authsdk.WithRefreshTimeout(app.cfg.TokenRefreshTimeout),
	}
	if app.cfg.BackendUsername != "" {
		opts = append(opts, authsdk.WithLogin(app.login))
	}
	app.session = authsdk.NewManager(app.client, app.tokenStore, opts...)

	if app.client.APIKey == "" {
		key, err := app.tokenStore.Get(ctx, apiKeyStorageKey)
		if err != nil {
			app.logger.Warn("failed to load stored api key", "error", err)
		}
		app.client.APIKey = key
	}

	if pair, ok := app.session.Tokens(ctx); ok {
		if !app.session.IsAccessTokenExpired(pair.AccessToken) {
			app.logger.Info("reusing stored backend session", "access_token", cryptox.FingerprintToken(pair.AccessToken))
			return nil
		}
		if pair, ok := app.session.Refresh(ctx); ok {
			app.logger.Info("refreshed stored backend session", "access_token", cryptox.FingerprintToken(pair.AccessToken))
			return nil
		}
	}

	if app.cfg.BackendUsername == "" {
		return fmt.Errorf("cannot start backend session: %w (set BACKEND_USERNAME and BACKEND_PASSWORD)", authsdk.ErrNoTokens)
	}

	pair, err := app.login(ctx)
	if err != nil {
		return err
	}

	if err := app.session.SetTokens(ctx, pair); err != nil {
		return fmt.Errorf("failed to store backend session: %w", err)
	}
	return nil
}

// login authenticates with the configured backend credentials. The session
// manager also calls it whenever the stored session is lost.
func (app *Application) login(ctx context.Context) (authsdk.TokenPair, error) {
	resp, err := app.client.Authenticate(ctx, app.cfg.BackendUsername, app.cfg.BackendPassword)
	if err != nil {
		return authsdk.TokenPair{}, fmt.Errorf("failed to authenticate with backend: %w", err)
	}

	if app.client.APIKey == "" && resp.Key != "" {
		app.client.APIKey = resp.Key
		if err := app.tokenStore.Set(ctx, apiKeyStorageKey, resp.Key); err != nil {
			app.logger.Warn("failed to store api key", "error", err)
		}
	}

	app.logger.Info("logged in to backend", "access_token", cryptox.FingerprintToken(resp.AccessToken))
	return resp.Tokens(), nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.checkoutService = &service.CheckoutService{
		Catalog: &service.CatalogService{
			Client:  app.session,
			BaseURL: app.cfg.BackendBaseURL,
			APIKey:  app.client.APIKey,
		},
		Store:   app.db,
		Gateway: app.cfg.Gateway,
		Secret:  app.cfg.SharedSecret,
	}
	app.callbackService = &service.CallbackService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.OrderTTL,
	)
	app.refresher = authsdk.NewRefresher(app.session, app.cfg.TokenRefreshInterval, app.logger)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.tokenPinger, app.session, app.logger)
	router.CheckoutService = app.checkoutService
	router.CallbackService = app.callbackService
	router.SuccessPage = app.cfg.SuccessPage
	router.FailurePage = app.cfg.FailurePage
	router.ModerateLimit = app.cfg.ModerateLimit
	router.LenientLimit = app.cfg.LenientLimit
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
