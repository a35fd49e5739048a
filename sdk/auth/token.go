// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// tokenHTTPTimeout bounds a single token request.
	tokenHTTPTimeout = 30 * time.Second

	// maxTokenResponseSize caps response bodies read from the
	// authorization server (1 MB).
	maxTokenResponseSize = 1 << 20
)

var defaultTokenClient = &http.Client{Timeout: tokenHTTPTimeout}

// oauthError is an OAuth 2.0 error response (RFC 6749 section 5.2).
type oauthError struct {
	Code             string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
	StatusCode       int    `json:"-"`
}

func (e *oauthError) Error() string {
	if e.ErrorDescription != "" {
		return fmt.Sprintf("OAuth error %q (status %d): %s", e.Code, e.StatusCode, e.ErrorDescription)
	}
	return fmt.Sprintf("OAuth error %q (status %d)", e.Code, e.StatusCode)
}

func parseOAuthError(statusCode int, body []byte) *oauthError {
	var oe oauthError
	if err := json.Unmarshal(body, &oe); err != nil {
		return nil
	}
	if oe.Code == "" {
		return nil
	}
	oe.StatusCode = statusCode
	return &oe
}

// tokenResponse decodes the token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

// TokenConfig parameterizes a client-credentials exchange against a
// public OAuth2 client (no secret).
type TokenConfig struct {
	// TokenURL is the token endpoint.
	TokenURL string

	// ClientID identifies the application.
	ClientID string

	// Scopes to request (optional).
	Scopes []string

	// HTTPClient overrides the default client (optional).
	HTTPClient *http.Client
}

// ExchangeClientCredentials performs a single client-credentials grant
// and returns the resulting bearer token. Non-2xx responses and
// malformed bodies become AuthError; nothing is retried.
func ExchangeClientCredentials(ctx context.Context, cfg TokenConfig) (*oauth2.Token, error) {
	if cfg.TokenURL == "" {
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("token URL is required")}
	}
	if cfg.ClientID == "" {
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("client ID is required")}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cfg.ClientID)
	if len(cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(cfg.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &AuthError{Op: "token_exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = defaultTokenClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &AuthError{Op: "token_exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenResponseSize))
	if err != nil {
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("reading token response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if oe := parseOAuthError(resp.StatusCode, body); oe != nil {
			return nil, &AuthError{Op: "token_exchange", Err: oe}
		}
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("token endpoint responded with status %d", resp.StatusCode)}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("decoding token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return nil, &AuthError{Op: "token_exchange", Err: fmt.Errorf("server returned empty access_token")}
	}

	tok := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = start.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// tokenSource adapts ExchangeClientCredentials to oauth2.TokenSource.
type tokenSource struct {
	ctx context.Context
	cfg TokenConfig
}

// NewTokenSource returns an oauth2.TokenSource performing the
// client-credentials grant on every call. Wrap it with
// oauth2.ReuseTokenSource for caching.
func NewTokenSource(ctx context.Context, cfg TokenConfig) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, cfg: cfg}
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	return ExchangeClientCredentials(ts.ctx, ts.cfg)
}
