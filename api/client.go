package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront-client/credentials"
	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

const refreshPath = "token/refresh"

// Client is the authenticated HTTP client for the storefront API. It attaches
// the stored access token as a bearer credential to every request and, on a
// single 401, silently refreshes the token pair and retries the original
// request once. An unrecoverable refresh clears the stored credentials and
// fires the OnSessionExpired hook so the caller can direct the user back to
// login.
type Client struct {
	baseURL          *url.URL
	httpClient       *http.Client
	creds            credentials.Repo
	logger           zerolog.Logger
	nowFunc          func() time.Time
	onSessionExpired func()

	// Serializes refresh so concurrent 401s rotate the pair once.
	refreshMu sync.Mutex
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithNowFunc(now func() time.Time) Option {
	return func(c *Client) {
		c.nowFunc = now
	}
}

// WithOnSessionExpired registers a hook invoked exactly once per forced
// logout, after the stored credentials have been cleared.
func WithOnSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

func New(baseURL string, creds credentials.Repo, options ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "api.New Parse")
	}

	c := &Client{
		baseURL: u,
		creds:   creds,
		logger:  zerolog.Nop(),
	}

	for _, opt := range options {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.nowFunc == nil {
		c.nowFunc = time.Now
	}
	return c, nil
}

// Get issues an authenticated GET and decodes the response body into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues an authenticated POST with a JSON body and decodes the response
// body into out. body and out may each be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues an authenticated PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Do sends one request, recovering from at most one expired-token response.
//
// The request body is buffered up front so the retry resends the exact
// original payload, and the access token is re-read from storage at retry
// time so the retried request always carries the newly issued token.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "Client.Do Marshal")
		}
	}

	requestID := uuid.New().String()

	resp, sentToken, err := c.send(ctx, method, path, payload, requestID)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)

		c.logger.Debug().Str("request_id", requestID).Str("path", path).Msg("unauthorized, attempting token refresh")

		if err := c.refresh(ctx, sentToken); err != nil {
			return c.sessionExpired(err)
		}

		// Single retry with the rotated token. A second 401 falls through
		// to ordinary error decoding: no further recovery is attempted.
		resp, _, err = c.send(ctx, method, path, payload, requestID)
		if err != nil {
			return err
		}
	}

	return decodeResponse(resp, out)
}

// send builds and performs one request attempt, returning the access token it
// carried. The bearer header is only set when an access token is stored; an
// anonymous request is sent otherwise.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, requestID string) (*http.Response, string, error) {
	u, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, "", errors.Wrap(err, "Client.send Parse")
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bodyReader)
	if err != nil {
		return nil, "", errors.Wrap(err, "Client.send NewRequest")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.accessToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.nowFunc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", errors.Wrap(err, "Client.send Do")
	}
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", c.nowFunc().Sub(start)).
		Msg("request completed")
	return resp, token, nil
}

// accessToken reads the stored access token, returning "" when absent.
func (c *Client) accessToken() string {
	pair, err := c.creds.Load()
	if err != nil || pair == nil {
		return ""
	}
	return pair.AccessToken
}

type refreshRequest struct {
	Token string `json:"token"`
}

type refreshResponse struct {
	Success bool   `json:"success"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// refresh rotates the token pair via the refresh endpoint. Refresh is only
// declared successful when the response body says so explicitly, not merely
// on HTTP 200. Any failure (missing refresh token, network error, explicit
// failure flag) is returned and treated by the caller as unrecoverable.
//
// staleAccess is the access token that produced the 401; if another caller
// already rotated the pair while this one waited on the lock, the stored
// token differs from staleAccess and no second refresh is issued.
func (c *Client) refresh(ctx context.Context, staleAccess string) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	pair, err := c.creds.Load()
	if err != nil {
		return errors.Wrap(err, "Client.refresh Load")
	}
	if pair == nil || pair.RefreshToken == "" {
		return errors.Wrap(serrors.ErrRefreshFailed, "no refresh token stored")
	}
	if pair.AccessToken != "" && pair.AccessToken != staleAccess {
		return nil // already rotated by a concurrent caller
	}

	payload, err := json.Marshal(refreshRequest{Token: pair.RefreshToken})
	if err != nil {
		return errors.Wrap(err, "Client.refresh Marshal")
	}

	u, err := c.baseURL.Parse(refreshPath)
	if err != nil {
		return errors.Wrap(err, "Client.refresh Parse")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "Client.refresh NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors during refresh fail closed: a clean
		// re-authentication beats an ambiguous half-authenticated state.
		return errors.Wrap(serrors.ErrRefreshFailed, err.Error())
	}
	defer resp.Body.Close()

	var refreshed refreshResponse
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		return errors.Wrap(serrors.ErrRefreshFailed, err.Error())
	}
	if !refreshed.Success || refreshed.Access == "" {
		return errors.Wrap(serrors.ErrRefreshFailed, "refresh endpoint reported failure")
	}

	if err := c.creds.Save(credentials.TokenPair{
		AccessToken:  refreshed.Access,
		RefreshToken: refreshed.Refresh,
	}); err != nil {
		return errors.Wrap(err, "Client.refresh Save")
	}

	c.logger.Debug().Msg("token pair rotated")
	return nil
}

// sessionExpired clears all stored credentials, fires the hook, and returns
// ErrSessionExpired so calling code does not proceed as if authenticated.
func (c *Client) sessionExpired(cause error) error {
	if err := c.creds.Clear(); err != nil {
		c.logger.Warn().Err(err).Msg("failed to clear credentials on forced logout")
	}
	c.logger.Warn().Err(cause).Msg("session expired, forcing re-authentication")
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
	return errors.Wrap(serrors.ErrSessionExpired, cause.Error())
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
