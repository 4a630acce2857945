package radflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// requestTimeout bounds every upstream RadFlow call.
const requestTimeout = 30 * time.Second

// ErrTimeout marks an upstream call that exceeded the request deadline.
// It is distinct from a generic connection failure so callers can report it.
var ErrTimeout = errors.New("API request timed out after 30 seconds")

// ErrMalformedResponse marks a 2xx response whose body is not valid JSON.
// Parser internals are deliberately not included in the message.
var ErrMalformedResponse = errors.New("Invalid JSON response from API")

// UpstreamHTTPError reports a non-2xx response from the RadFlow API.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// BasicAuth carries optional basic-auth credentials for chatbot endpoints.
type BasicAuth struct {
	User     string
	Password string
}

// Client issues JSON POST requests against the RadFlow API, translating
// transport failures into the typed errors above.
type Client struct {
	httpClient *http.Client
	logger     logSDK.Logger
}

// NewClient constructs a Client with the fixed upstream timeout.
func NewClient(logger logSDK.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger.Named("radflow_client"),
	}, nil
}

// PostJSON sends payload as a JSON body to url and returns the response body.
// auth may be nil. Failures map onto ErrTimeout, UpstreamHTTPError, or a
// wrapped connection error.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, auth *BasicAuth) ([]byte, error) {
	return c.post(ctx, url, payload, func(req *http.Request) {
		if auth != nil {
			req.SetBasicAuth(auth.User, auth.Password)
		}
	})
}

// PostJSONBearer sends payload with a bearer Authorization header.
func (c *Client) PostJSONBearer(ctx context.Context, url string, payload any, token string) ([]byte, error) {
	return c.post(ctx, url, payload, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
}

func (c *Client) post(ctx context.Context, url string, payload any, decorate func(*http.Request)) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal request payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "create request to `%s`", url)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	decorate(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("upstream request timed out", zap.String("url", url))
			return nil, errors.Wrap(ErrTimeout, url)
		}
		return nil, errors.Wrap(err, "send request")
	}
	defer resp.Body.Close() // nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	c.logger.Debug("upstream request finished",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamHTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

// PostEnvelope posts payload and decodes the response as a RadFlow envelope.
func (c *Client) PostEnvelope(ctx context.Context, url string, payload any) (*Envelope, error) {
	body, err := c.PostJSON(ctx, url, payload, nil)
	if err != nil {
		return nil, err
	}

	env := new(Envelope)
	if err := json.Unmarshal(body, env); err != nil {
		c.logger.Error("unmarshal upstream envelope", zap.Error(err), zap.String("url", url))
		return nil, ErrMalformedResponse
	}

	return env, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
