/*
Package authsdk keeps a backend session alive for a long-running process.

# Overview

The business backend issues a short-lived access token and a refresh token on
login. Every API call carries the access token as a bearer header, and the
refresh token is exchanged for a fresh pair before (or when) the access token
stops being accepted.

The package is organized around two types:

  - SDKClient: the unauthenticated login and refresh endpoints
  - Manager: owns the current TokenPair and sends authenticated requests

Log in once and hand the pair to a Manager:

	client := authsdk.NewSDKClient("https://api.example.com", apiKey)

	login, err := client.Authenticate(ctx, "ops@example.com", password)
	if err != nil {
		return err
	}

	manager := authsdk.NewManager(client, storage, authsdk.WithLogger(logger))
	if err := manager.SetTokens(ctx, login.Tokens()); err != nil {
		return err
	}

Then send requests through it:

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, client.URL("/api/washbook"), nil)
	resp, err := manager.Do(req)

# Token Refresh

Do checks the access token's exp claim (with a 30-second buffer) and refreshes
first when it is about to expire. If the backend still answers 401 or 403, Do
refreshes and resends the request exactly once.

Refresh calls are single-flight: concurrent callers share one network call and
all observe its result. A failed refresh clears the pair from memory and from
Storage, after which the process has to log in again. WithLogin installs that
login: it runs inside the same single flight whenever a refresh fails or finds
no pair, and Do uses it before sending a request without a pair.

A Refresher keeps an idle session warm by refreshing on a fixed interval:

	refresher := authsdk.NewRefresher(manager, 14*time.Minute, logger)
	refresher.Start()
	defer refresher.Stop()

# Storage

Storage persists the pair under two keys so it survives a restart. A pair is
only loaded from Storage when both keys are present. MemoryStorage is provided
for tests; durable drivers live with the service that uses them.

# Thread Safety

Manager and Refresher are safe for concurrent use.
*/
package authsdk
