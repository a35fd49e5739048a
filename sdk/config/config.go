// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpointURL is the only built-in default; every other field
// must come from an explicit Settings value, the environment or a
// dotenv file.
const DefaultEndpointURL = "https://api.prescient.earth"

// EnvPrefix is prepended to the upper-snake field names when looking up
// environment variables and dotenv keys (e.g. PRESCIENT_AWS_REGION).
const EnvPrefix = "PRESCIENT"

// Settings is the merged configuration record used to parameterize all
// outbound calls. It is a plain value type: construct it once, pass it
// around by value, never mutate it afterwards.
type Settings struct {
	// EndpointURL is the base URL of the Prescient API.
	EndpointURL string

	// AWSRegion and AWSRole parameterize STS role assumption for data
	// access.
	AWSRegion string
	AWSRole   string

	// TenantID, ClientID, AuthURL and AuthTokenPath parameterize the
	// OAuth2 client-credentials exchange. The token endpoint is
	// AuthURL joined with TenantID and AuthTokenPath.
	TenantID      string
	ClientID      string
	AuthURL       string
	AuthTokenPath string

	// UploadRole and UploadBucket parameterize data uploads.
	UploadRole   string
	UploadBucket string
}

// ConfigError reports a missing or invalid configuration value. It is
// returned before any network call is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Reason
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func missingField(envKey string) *ConfigError {
	return &ConfigError{Field: envKey, Reason: "required value is not set"}
}

// ValidateForRoleAssumption checks the fields the STS role assumption
// path needs.
func (s Settings) ValidateForRoleAssumption() error {
	if s.AWSRegion == "" {
		return missingField(EnvPrefix + "_AWS_REGION")
	}
	if s.AWSRole == "" {
		return missingField(EnvPrefix + "_AWS_ROLE")
	}
	return nil
}

// ValidateForTokenExchange checks the fields the OAuth2
// client-credentials path needs.
func (s Settings) ValidateForTokenExchange() error {
	if s.TenantID == "" {
		return missingField(EnvPrefix + "_TENANT_ID")
	}
	if s.ClientID == "" {
		return missingField(EnvPrefix + "_CLIENT_ID")
	}
	if s.AuthURL == "" {
		return missingField(EnvPrefix + "_AUTH_URL")
	}
	if s.AuthTokenPath == "" {
		return missingField(EnvPrefix + "_AUTH_TOKEN_PATH")
	}
	return nil
}

// ValidateForUpload checks the fields the upload path needs.
func (s Settings) ValidateForUpload() error {
	if s.AWSRegion == "" {
		return missingField(EnvPrefix + "_AWS_REGION")
	}
	if s.UploadRole == "" {
		return missingField(EnvPrefix + "_UPLOAD_ROLE")
	}
	if s.UploadBucket == "" {
		return missingField(EnvPrefix + "_UPLOAD_BUCKET")
	}
	return nil
}

// STACCatalogURL returns the STAC catalog root under the configured
// endpoint.
func (s Settings) STACCatalogURL() string {
	return joinURL(s.EndpointURL, "stac")
}

// TokenURL returns the OAuth2 token endpoint assembled from AuthURL,
// TenantID and AuthTokenPath.
func (s Settings) TokenURL() string {
	return joinURL(joinURL(s.AuthURL, s.TenantID), s.AuthTokenPath)
}

func joinURL(base, elem string) string {
	if base == "" {
		return elem
	}
	if u, err := url.JoinPath(base, elem); err == nil {
		return u
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(elem, "/")
}
