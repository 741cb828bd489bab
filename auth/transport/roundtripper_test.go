package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/dashnex/auth/store"
)

type refresherFunc func(ctx context.Context) error

func (f refresherFunc) Refresh(ctx context.Context) error { return f(ctx) }

func TestRoundTripper_RoundTrip(t *testing.T) {
	var testCases = []struct {
		description    string
		accessToken    string
		refreshToken   string
		statuses       []int
		refreshErr     error
		expectStatus   int
		expectErr      error
		expectCalls    int32
		expectRefresh  int32
		expectLastAuth string
	}{
		{
			description:    "authorized on first attempt",
			accessToken:    "a1",
			refreshToken:   "r1",
			statuses:       []int{http.StatusOK},
			expectStatus:   http.StatusOK,
			expectCalls:    1,
			expectLastAuth: "Bearer a1",
		},
		{
			description:  "no access token",
			refreshToken: "r1",
			expectErr:    ErrNotAuthenticated,
		},
		{
			description:    "401 then refreshed retry",
			accessToken:    "a1",
			refreshToken:   "r1",
			statuses:       []int{http.StatusUnauthorized, http.StatusOK},
			expectStatus:   http.StatusOK,
			expectCalls:    2,
			expectRefresh:  1,
			expectLastAuth: "Bearer a2",
		},
		{
			description:    "401 twice stops after one retry",
			accessToken:    "a1",
			refreshToken:   "r1",
			statuses:       []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusOK},
			expectStatus:   http.StatusUnauthorized,
			expectCalls:    2,
			expectRefresh:  1,
			expectLastAuth: "Bearer a2",
		},
		{
			description:    "401 without refresh token",
			accessToken:    "a1",
			statuses:       []int{http.StatusUnauthorized},
			expectStatus:   http.StatusUnauthorized,
			expectCalls:    1,
			expectLastAuth: "Bearer a1",
		},
		{
			description:   "refresh failure surfaces",
			accessToken:   "a1",
			refreshToken:  "r1",
			statuses:      []int{http.StatusUnauthorized},
			refreshErr:    errors.New("refresh rejected"),
			expectErr:     errors.New("refresh rejected"),
			expectCalls:   1,
			expectRefresh: 1,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			var calls, refreshes int32
			var lastAuth atomic.Value
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				index := atomic.AddInt32(&calls, 1) - 1
				lastAuth.Store(r.Header.Get("Authorization"))
				body, _ := io.ReadAll(r.Body)
				assert.Equal(t, `{"domain":"example.com"}`, string(body))
				w.WriteHeader(testCase.statuses[index])
			}))
			defer server.Close()

			tokens := store.NewMemoryStore(store.WithTokens(testCase.accessToken, testCase.refreshToken))
			refresher := refresherFunc(func(ctx context.Context) error {
				atomic.AddInt32(&refreshes, 1)
				if testCase.refreshErr != nil {
					return testCase.refreshErr
				}
				return tokens.SetTokens(ctx, "a2", "r2")
			})
			client := &http.Client{Transport: New(tokens, WithRefresher(refresher))}

			req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader(`{"domain":"example.com"}`))
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer caller")
			resp, err := client.Do(req)

			assert.Equal(t, testCase.expectCalls, atomic.LoadInt32(&calls))
			assert.Equal(t, testCase.expectRefresh, atomic.LoadInt32(&refreshes))
			if testCase.expectErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr.Error())
				if errors.Is(testCase.expectErr, ErrNotAuthenticated) {
					assert.ErrorIs(t, err, ErrNotAuthenticated)
				}
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, testCase.expectStatus, resp.StatusCode)
			assert.Equal(t, testCase.expectLastAuth, lastAuth.Load())
		})
	}
}

func TestClone_BuffersBodyWithoutGetBody(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://localhost", io.NopCloser(strings.NewReader("payload")))
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	first, err := clone(req)
	require.NoError(t, err)
	second, err := clone(req)
	require.NoError(t, err)
	for _, r := range []*http.Request{first, second} {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	}
}

func TestRoundTripper_Origin(t *testing.T) {
	var foreignAuth atomic.Value
	var foreignCalls int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&foreignCalls, 1)
		foreignAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer foreign.Close()
	var originAuth atomic.Value
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originAuth.Store(r.Header.Get("Authorization"))
		http.Redirect(w, r, foreign.URL+"/elsewhere", http.StatusFound)
	}))
	defer origin.Close()

	var refreshes int32
	tokens := store.NewMemoryStore(store.WithTokens("a1", "r1"))
	refresher := refresherFunc(func(ctx context.Context) error {
		atomic.AddInt32(&refreshes, 1)
		return nil
	})
	client := &http.Client{Transport: New(tokens, WithRefresher(refresher), WithOrigin(origin.URL))}
	resp, err := client.Get(origin.URL + "/api/oauth/v2/user")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer a1", originAuth.Load())
	assert.Equal(t, int32(1), atomic.LoadInt32(&foreignCalls))
	assert.Equal(t, "", foreignAuth.Load())
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshes))
}

func TestRoundTripper_Trusted(t *testing.T) {
	rt := New(store.NewMemoryStore(), WithOrigin("https://dashnex.com"))
	var testCases = []struct {
		URL    string
		expect bool
	}{
		{URL: "https://dashnex.com/api/oauth/v2/user", expect: true},
		{URL: "https://DashNex.com/api", expect: true},
		{URL: "http://dashnex.com/api", expect: false},
		{URL: "https://evil.example.com/api", expect: false},
		{URL: "https://dashnex.com:8443/api", expect: false},
	}
	for _, testCase := range testCases {
		target, err := url.Parse(testCase.URL)
		require.NoError(t, err)
		assert.Equal(t, testCase.expect, rt.trusted(target), testCase.URL)
	}
	target, _ := url.Parse("https://any.example.com")
	assert.True(t, New(store.NewMemoryStore()).trusted(target))
}
