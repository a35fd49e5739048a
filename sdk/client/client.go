// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

// Package client bundles resolved settings with lazily brokered
// credentials. A Client resolves its configuration eagerly at
// construction; the credential exchanges happen on first use of the
// corresponding accessor and are cached for the lifetime of the
// instance, re-acquired when expired. Two Clients never share cached
// material.
package client

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/prescient-earth/prescient-sdk-go/sdk/auth"
	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
)

// expirySkew keeps nearly-expired credential material from being
// handed out.
const expirySkew = 30 * time.Second

type Client struct {
	settings   config.Settings
	httpClient *http.Client

	// exchange funcs are injectable for tests
	assumeRole func(ctx context.Context, region, roleARN string) (auth.Credentials, error)
	exchange   func(ctx context.Context, cfg auth.TokenConfig) (*oauth2.Token, error)

	mu          sync.RWMutex
	token       *oauth2.Token
	awsCreds    *auth.Credentials
	uploadCreds *auth.Credentials
}

type options struct {
	settings    *config.Settings
	envFile     string
	resolveOpts []config.Option
	httpClient  *http.Client
}

// Option configures New.
type Option func(*options)

// WithSettings supplies explicit settings. Empty fields still fall back
// to the environment, dotenv file and defaults, field by field.
func WithSettings(s config.Settings) Option {
	return func(o *options) { o.settings = &s }
}

// WithEnvFile resolves settings against the given dotenv file. Cannot
// be combined with WithSettings.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

// WithProfile resolves settings against a named profile from the
// profiles file.
func WithProfile(name string) Option {
	return func(o *options) { o.resolveOpts = append(o.resolveOpts, config.WithProfile(name)) }
}

// WithLookup replaces the environment variable provider used during
// resolution.
func WithLookup(fn config.LookupFunc) Option {
	return func(o *options) { o.resolveOpts = append(o.resolveOpts, config.WithLookup(fn)) }
}

// WithHTTPClient overrides the HTTP client used for token requests and
// API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// New resolves the effective configuration and returns a ready Client.
// With no options, settings come from environment variables and a
// config.env file in the working directory.
func New(opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.settings != nil && o.envFile != "" {
		return nil, &config.ConfigError{
			Reason: "cannot provide both an environment file and a settings object",
		}
	}

	resolveOpts := o.resolveOpts
	if o.settings != nil {
		resolveOpts = append(resolveOpts, config.WithSettings(*o.settings))
	}
	if o.envFile != "" {
		resolveOpts = append(resolveOpts, config.WithEnvFile(o.envFile))
	}

	settings, err := config.Resolve(resolveOpts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		settings:   settings,
		httpClient: o.httpClient,
		assumeRole: auth.AssumeRole,
		exchange:   auth.ExchangeClientCredentials,
	}, nil
}

// Settings returns the resolved configuration.
func (c *Client) Settings() config.Settings {
	return c.settings
}

// STACCatalogURL returns the STAC catalog root for the configured
// endpoint.
func (c *Client) STACCatalogURL() string {
	return c.settings.STACCatalogURL()
}

// Token returns the bearer token, performing the client-credentials
// exchange on first use and whenever the cached token has expired.
func (c *Client) Token(ctx context.Context) (*oauth2.Token, error) {
	if err := c.settings.ValidateForTokenExchange(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	if tok := c.token; tokenValid(tok) {
		c.mu.RUnlock()
		return tok, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if tok := c.token; tokenValid(tok) {
		return tok, nil
	}

	tok, err := c.exchange(ctx, auth.TokenConfig{
		TokenURL:   c.settings.TokenURL(),
		ClientID:   c.settings.ClientID,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, err
	}
	c.token = tok
	return tok, nil
}

func tokenValid(tok *oauth2.Token) bool {
	if tok == nil {
		return false
	}
	return tok.Expiry.IsZero() || time.Now().Add(expirySkew).Before(tok.Expiry)
}

// Headers returns request headers for the Prescient API, including the
// bearer token.
func (c *Client) Headers(ctx context.Context) (map[string]string, error) {
	tok, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"Authorization": "Bearer " + tok.AccessToken,
	}, nil
}

// TokenProvider adapts Token to the HTTP core's provider hook.
func (c *Client) TokenProvider() config.TokenProvider {
	return func(ctx context.Context) (string, error) {
		tok, err := c.Token(ctx)
		if err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	}
}

// AWSCredentials returns temporary credentials for the data access
// role, assuming it on first use and whenever the cached credentials
// have expired.
func (c *Client) AWSCredentials(ctx context.Context) (auth.Credentials, error) {
	if err := c.settings.ValidateForRoleAssumption(); err != nil {
		return auth.Credentials{}, err
	}
	return c.cachedAssumeRole(ctx, &c.awsCreds, c.settings.AWSRole)
}

// UploadCredentials returns temporary credentials for the upload role.
func (c *Client) UploadCredentials(ctx context.Context) (auth.Credentials, error) {
	if err := c.settings.ValidateForUpload(); err != nil {
		return auth.Credentials{}, err
	}
	return c.cachedAssumeRole(ctx, &c.uploadCreds, c.settings.UploadRole)
}

func (c *Client) cachedAssumeRole(ctx context.Context, slot **auth.Credentials, roleARN string) (auth.Credentials, error) {
	c.mu.RLock()
	if creds := *slot; creds != nil && !creds.Expired(expirySkew) {
		c.mu.RUnlock()
		return *creds, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if creds := *slot; creds != nil && !creds.Expired(expirySkew) {
		return *creds, nil
	}

	creds, err := c.assumeRole(ctx, c.settings.AWSRegion, roleARN)
	if err != nil {
		return auth.Credentials{}, err
	}
	*slot = &creds
	return creds, nil
}

// DataS3Client builds an S3 client backed by the data access role's
// temporary credentials.
func (c *Client) DataS3Client(ctx context.Context) (*config.S3Client, error) {
	creds, err := c.AWSCredentials(ctx)
	if err != nil {
		return nil, err
	}
	return c.s3Client(ctx, creds)
}

// UploadS3Client builds an S3 client backed by the upload role's
// temporary credentials.
func (c *Client) UploadS3Client(ctx context.Context) (*config.S3Client, error) {
	creds, err := c.UploadCredentials(ctx)
	if err != nil {
		return nil, err
	}
	return c.s3Client(ctx, creds)
}

func (c *Client) s3Client(ctx context.Context, creds auth.Credentials) (*config.S3Client, error) {
	return config.NewS3Client(ctx, config.S3Config{
		AccessKey:    creds.AccessKeyID,
		SecretKey:    creds.SecretAccessKey,
		SessionToken: creds.SessionToken,
		Region:       c.settings.AWSRegion,
	})
}

// Invalidate drops all cached credential material. The next accessor
// call performs a fresh exchange.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
	c.awsCreds = nil
	c.uploadCreds = nil
}
