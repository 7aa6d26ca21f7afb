package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront-client/api"
	"github.com/jrsteele09/go-storefront-client/credentials"
	fakecredentialsrepo "github.com/jrsteele09/go-storefront-client/credentials/repofake"
	serrors "github.com/jrsteele09/go-storefront-client/internal/errors"
)

const (
	staleAccess   = "access-stale"
	freshAccess   = "access-fresh"
	oldRefresh    = "refresh-old"
	newRefresh    = "refresh-new"
	privateRoute  = "/private/"
	refreshRoute  = "/token/refresh"
	responseValue = 42
)

type valueResponse struct {
	Value int `json:"value"`
}

// refreshHandler serves the token refresh endpoint and counts calls.
func refreshHandler(t *testing.T, calls *int32, succeed bool) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)

		var body struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, oldRefresh, body.Token)

		w.Header().Set("Content-Type", "application/json")
		if !succeed {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"access":  freshAccess,
			"refresh": newRefresh,
		})
	}
}

func newClient(t *testing.T, baseURL string, creds credentials.Repo, options ...api.Option) *api.Client {
	t.Helper()
	client, err := api.New(baseURL, creds, options...)
	require.NoError(t, err)
	return client
}

func TestClient_AttachesBearerToken(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+staleAccess, r.Header.Get("Authorization"))
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(valueResponse{Value: responseValue})
	}))
	defer server.Close()

	var out valueResponse
	err := newClient(t, server.URL, creds).Get(context.Background(), privateRoute, &out)
	require.NoError(t, err)
	require.Equal(t, responseValue, out.Value)
}

func TestClient_NoTokenSendsAnonymousRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(valueResponse{Value: responseValue})
	}))
	defer server.Close()

	var out valueResponse
	err := newClient(t, server.URL, fakecredentialsrepo.NewFakeRepo()).Get(context.Background(), privateRoute, &out)
	require.NoError(t, err)
	require.Equal(t, responseValue, out.Value)
}

func TestClient_RefreshAndRetryOn401(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	var refreshCalls, privateCalls int32
	var requestIDs []string
	var bodies []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, refreshHandler(t, &refreshCalls, true))
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&privateCalls, 1)

		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requestIDs = append(requestIDs, r.Header.Get("X-Request-ID"))
		bodies = append(bodies, string(body))
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+freshAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(valueResponse{Value: responseValue})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	var out valueResponse
	err := newClient(t, server.URL, creds).Post(context.Background(), privateRoute, map[string]int{"qty": 3}, &out)

	t.Run("caller sees the retried response, never the 401", func(t *testing.T) {
		require.NoError(t, err)
		require.Equal(t, responseValue, out.Value)
	})

	t.Run("exactly one refresh and one retry", func(t *testing.T) {
		require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
		require.Equal(t, int32(2), atomic.LoadInt32(&privateCalls))
	})

	t.Run("retry resends the exact original request", func(t *testing.T) {
		require.Len(t, bodies, 2)
		require.Equal(t, bodies[0], bodies[1])
		require.Equal(t, requestIDs[0], requestIDs[1])
	})

	t.Run("rotated pair is stored", func(t *testing.T) {
		stored := creds.Stored()
		require.NotNil(t, stored)
		require.Equal(t, freshAccess, stored.AccessToken)
		require.Equal(t, newRefresh, stored.RefreshToken)
	})
}

func TestClient_SecondUnauthorizedIsRejectedWithoutRecovery(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, refreshHandler(t, &refreshCalls, true))
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	err := newClient(t, server.URL, creds).Get(context.Background(), privateRoute, nil)
	require.Error(t, err)
	require.True(t, serrors.Is(err, serrors.ErrRequestRejected))
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls), "no second refresh attempt")
}

func TestClient_MissingRefreshTokenForcesLogout(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken: staleAccess, // no refresh token stored
	})

	var refreshCalls int32
	var hookCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, refreshHandler(t, &refreshCalls, true))
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newClient(t, server.URL, creds, api.WithOnSessionExpired(func() {
		atomic.AddInt32(&hookCalls, 1)
	}))

	err := client.Get(context.Background(), privateRoute, nil)
	require.Error(t, err)
	require.True(t, serrors.Is(err, serrors.ErrSessionExpired))
	require.Nil(t, creds.Stored(), "credentials cleared")
	require.Equal(t, int32(0), atomic.LoadInt32(&refreshCalls), "refresh endpoint never called")
	require.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
}

func TestClient_RefreshFailureFlagForcesLogout(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	var refreshCalls int32
	var hookCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, refreshHandler(t, &refreshCalls, false))
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newClient(t, server.URL, creds, api.WithOnSessionExpired(func() {
		atomic.AddInt32(&hookCalls, 1)
	}))

	err := client.Get(context.Background(), privateRoute, nil)
	require.Error(t, err)
	require.True(t, serrors.Is(err, serrors.ErrSessionExpired))
	require.Nil(t, creds.Stored())
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Equal(t, int32(1), atomic.LoadInt32(&hookCalls))
}

func TestClient_RefreshNetworkErrorForcesLogout(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, func(w http.ResponseWriter, r *http.Request) {
		// Simulate a connection failure mid-refresh.
		hj, ok := w.(http.Hijacker)
		require.True(t, ok)
		conn, _, err := hj.Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	err := newClient(t, server.URL, creds).Get(context.Background(), privateRoute, nil)
	require.Error(t, err)
	require.True(t, serrors.Is(err, serrors.ErrSessionExpired))
	require.Nil(t, creds.Stored())
}

func TestClient_ConcurrentUnauthorizedSharesOneRefresh(t *testing.T) {
	creds := fakecredentialsrepo.NewFakeRepoWithPair(credentials.TokenPair{
		AccessToken:  staleAccess,
		RefreshToken: oldRefresh,
	})

	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc(refreshRoute, refreshHandler(t, &refreshCalls, true))
	mux.HandleFunc(privateRoute, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+freshAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(valueResponse{Value: responseValue})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newClient(t, server.URL, creds)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var out valueResponse
			errs[i] = client.Get(context.Background(), privateRoute, &out)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestClient_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/rejected/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "out of stock"})
	})
	mux.HandleFunc("/soft-failure/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "cart limit reached"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newClient(t, server.URL, fakecredentialsrepo.NewFakeRepo())

	t.Run("404 maps to ErrNotFound", func(t *testing.T) {
		err := client.Get(context.Background(), "/missing/", nil)
		require.True(t, serrors.Is(err, serrors.ErrNotFound))
	})

	t.Run("rejection carries the backend message", func(t *testing.T) {
		err := client.Get(context.Background(), "/rejected/", nil)
		require.True(t, serrors.Is(err, serrors.ErrRequestRejected))

		var apiErr *api.Error
		require.True(t, serrors.As(err, &apiErr))
		require.Equal(t, "out of stock", apiErr.Message)
	})

	t.Run("explicit success=false is a rejection even on HTTP 200", func(t *testing.T) {
		err := client.Get(context.Background(), "/soft-failure/", nil)
		require.True(t, serrors.Is(err, serrors.ErrRequestRejected))
	})
}
