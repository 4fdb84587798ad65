package authapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSendsJSONCredentials(t *testing.T) {
	var got Credentials
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "storefront-test", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"jwt-abc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/auth/login", WithUserAgent("storefront-test"))
	res, err := c.Login(context.Background(), Credentials{Username: "mor_2314", Password: "83r5^_"})
	require.NoError(t, err)

	assert.Equal(t, "jwt-abc", res.Token)
	assert.Equal(t, Credentials{Username: "mor_2314", Password: "83r5^_"}, got)
}

func TestLoginAllowsEmptyCredentials(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL).Login(context.Background(), Credentials{})
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.Equal(t, map[string]any{"username": "", "password": ""}, raw)
}

func TestLoginSuccessStatusWithoutToken(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"empty token", `{"token":""}`},
		{"plain text", `ok`},
		{"no body", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := NewClient(srv.URL).Login(context.Background(), Credentials{Username: "u"})
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Empty(t, res.Token)
		})
	}
}

func TestLoginErrorStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantHasBody bool
	}{
		{"json error field", http.StatusUnauthorized, `{"error":"Invalid credentials"}`, "Invalid credentials", true},
		{"nested error object", http.StatusBadRequest, `{"error":{"message":"bad input"}}`, "", true},
		{"empty error field", http.StatusUnauthorized, `{"error":""}`, "", true},
		{"json without error", http.StatusUnauthorized, `{"status":"error"}`, "", true},
		{"json array", http.StatusBadRequest, `[]`, "", true},
		{"plain text", http.StatusUnauthorized, "username or password is incorrect", "", true},
		{"json string", http.StatusUnauthorized, `"oops"`, "", true},
		{"json true", http.StatusUnauthorized, `true`, "", true},
		{"html page", http.StatusBadGateway, "<html><body>bad gateway</body></html>", "", true},
		{"empty body", http.StatusInternalServerError, "", "", false},
		{"whitespace body", http.StatusInternalServerError, " \n", "", false},
		{"json null", http.StatusUnauthorized, `null`, "", false},
		{"json false", http.StatusUnauthorized, `false`, "", false},
		{"json zero", http.StatusUnauthorized, `0`, "", false},
		{"json empty string", http.StatusUnauthorized, `""`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := NewClient(srv.URL).Login(context.Background(), Credentials{Username: "u", Password: "p"})
			require.Error(t, err)
			assert.Nil(t, res)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantHasBody, apiErr.HasBody)
		})
	}
}

func TestLoginTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Login(context.Background(), Credentials{})
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestLoginHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := c.Login(context.Background(), Credentials{})
	require.Error(t, err)
}

func TestLoginHonoursContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL).Login(ctx, Credentials{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Zero(t, c.httpClient.Timeout)

	custom := &http.Client{}
	c = NewClient("http://example.test/login", WithHTTPClient(custom), WithTimeout(time.Second))
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.Zero(t, custom.Timeout, "caller's client must not be mutated")
}
