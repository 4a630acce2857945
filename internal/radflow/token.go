package radflow

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/golang-jwt/jwt/v5"
)

// tokenFreshnessWindow is how much remaining lifetime a cached token must
// have to be reused without a refresh. The boundary is exclusive: a token
// expiring in exactly 60 seconds is refreshed.
const tokenFreshnessWindow = 60 * time.Second

// AuthenticationError wraps every failure mode of the token-issuance flow.
// Callers catch it at the tool boundary and convert it to a structured
// failure payload.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("could not retrieve authentication token: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// TokenCache caches the RadFlow partner bearer token for the lifetime of the
// process. Reads and writes of the token/expiry pair are serialized by a
// mutex, but the fetch itself runs unlocked: two callers that both observe a
// stale token may both refresh, and the last writer wins. Duplicate
// refreshes are idempotent from the caller's point of view.
type TokenCache struct {
	client   *Client
	endpoint string
	apiKey   string
	logger   logSDK.Logger
	clock    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenCache constructs an empty TokenCache.
func NewTokenCache(client *Client, endpoint, apiKey string, logger logSDK.Logger) (*TokenCache, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if endpoint == "" {
		return nil, errors.New("token endpoint is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &TokenCache{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logger.Named("token_cache"),
		clock:    time.Now,
	}, nil
}

// Get returns a valid bearer token, reusing the cached one when it has more
// than 60 seconds of lifetime left. Fetch failures leave the cached state
// untouched and surface as *AuthenticationError.
func (tc *TokenCache) Get(ctx context.Context) (string, error) {
	if token, ok := tc.cached(); ok {
		tc.logger.Debug("using cached jwt token")
		return token, nil
	}

	tc.logger.Info("fetching new jwt token")

	token, expiresAt, err := tc.fetch(ctx)
	if err != nil {
		tc.logger.Error("fetch jwt token", zap.Error(err))
		return "", &AuthenticationError{Err: err}
	}

	tc.mu.Lock()
	tc.token = token
	tc.expiresAt = expiresAt
	tc.mu.Unlock()

	tc.logger.Info("cached new jwt token", zap.Time("expires_at", expiresAt))
	return token, nil
}

// cached returns the stored token when it is still inside its freshness
// window.
func (tc *TokenCache) cached() (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.token == "" {
		return "", false
	}
	if !tc.expiresAt.After(tc.clock().Add(tokenFreshnessWindow)) {
		return "", false
	}

	return tc.token, true
}

// fetch performs one token-issuance request and extracts the token expiry
// from its unverified claims.
func (tc *TokenCache) fetch(ctx context.Context) (token string, expiresAt time.Time, err error) {
	url := fmt.Sprintf("%s?partnerApiKey=%s", tc.endpoint, tc.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "create token request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := tc.client.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", time.Time{}, errors.Wrap(ErrTimeout, "token endpoint")
		}
		return "", time.Time{}, errors.Wrap(err, "send token request")
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "read token response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", time.Time{}, &UpstreamHTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload struct {
		Result *struct {
			JWTToken string `json:"jwtToken"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", time.Time{}, ErrMalformedResponse
	}

	if payload.Result == nil {
		return "", time.Time{}, errors.New("API response missing 'result' object")
	}
	if payload.Result.JWTToken == "" {
		return "", time.Time{}, errors.New("JWT token is missing or invalid in API response")
	}

	expiresAt, err = tokenExpiry(payload.Result.JWTToken)
	if err != nil {
		return "", time.Time{}, err
	}

	return payload.Result.JWTToken, expiresAt, nil
}

// tokenExpiry reads the `exp` claim from the token payload. The signature is
// deliberately not verified; the issuer is trusted via transport security.
func tokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "decode jwt payload")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, errors.New("expiration time ('exp') not found in JWT payload")
	}

	return exp.Time, nil
}
