// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeClientCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "my-client", r.PostForm.Get("client_id"))
		assert.Empty(t, r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	before := time.Now()
	tok, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, before.Add(time.Hour), tok.Expiry, 5*time.Second)
}

func TestExchangeClientCredentialsScopes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "read write", r.PostForm.Get("scope"))
		w.Write([]byte(`{"access_token":"tok-2"}`))
	}))
	defer srv.Close()

	tok, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		Scopes:     []string{"read", "write"},
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok.AccessToken)
	assert.True(t, tok.Expiry.IsZero())
}

func TestExchangeClientCredentialsOAuthError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client","error_description":"unknown client"}`))
	}))
	defer srv.Close()

	_, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "nope",
		HTTPClient: srv.Client(),
	})
	require.Error(t, err)

	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "token_exchange", ae.Op)
	assert.Contains(t, err.Error(), "invalid_client")
	assert.Contains(t, err.Error(), "unknown client")

	// a failed exchange is not retried
	assert.Equal(t, int32(1), calls.Load())
}

func TestExchangeClientCredentialsNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		HTTPClient: srv.Client(),
	})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "502")
}

func TestExchangeClientCredentialsEmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	_, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		HTTPClient: srv.Client(),
	})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "empty access_token")
}

func TestExchangeClientCredentialsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := ExchangeClientCredentials(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		HTTPClient: srv.Client(),
	})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, err.Error(), "decoding token response")
}

func TestExchangeClientCredentialsMissingConfig(t *testing.T) {
	_, err := ExchangeClientCredentials(context.Background(), TokenConfig{ClientID: "x"})
	var ae *AuthError
	require.ErrorAs(t, err, &ae)

	_, err = ExchangeClientCredentials(context.Background(), TokenConfig{TokenURL: "https://auth"})
	require.ErrorAs(t, err, &ae)
}

func TestTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"tok-src","expires_in":60}`))
	}))
	defer srv.Close()

	ts := NewTokenSource(context.Background(), TokenConfig{
		TokenURL:   srv.URL,
		ClientID:   "my-client",
		HTTPClient: srv.Client(),
	})
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-src", tok.AccessToken)
}
