// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// DefaultEnvFile is the dotenv file picked up from the working
// directory when no explicit path is given.
const DefaultEnvFile = "config.env"

// fieldSpec describes one Settings field in the precedence table. The
// merge below walks this table field by field, so the resolution order
// is auditable instead of being buried in reflection.
type fieldSpec struct {
	key string // upper-snake suffix, prefixed with EnvPrefix for lookups
	get func(Settings) string
	set func(*Settings, string)
	def string
}

var settingsFields = []fieldSpec{
	{
		key: "ENDPOINT_URL",
		get: func(s Settings) string { return s.EndpointURL },
		set: func(s *Settings, v string) { s.EndpointURL = v },
		def: DefaultEndpointURL,
	},
	{
		key: "AWS_REGION",
		get: func(s Settings) string { return s.AWSRegion },
		set: func(s *Settings, v string) { s.AWSRegion = v },
	},
	{
		key: "AWS_ROLE",
		get: func(s Settings) string { return s.AWSRole },
		set: func(s *Settings, v string) { s.AWSRole = v },
	},
	{
		key: "TENANT_ID",
		get: func(s Settings) string { return s.TenantID },
		set: func(s *Settings, v string) { s.TenantID = v },
	},
	{
		key: "CLIENT_ID",
		get: func(s Settings) string { return s.ClientID },
		set: func(s *Settings, v string) { s.ClientID = v },
	},
	{
		key: "AUTH_URL",
		get: func(s Settings) string { return s.AuthURL },
		set: func(s *Settings, v string) { s.AuthURL = v },
	},
	{
		key: "AUTH_TOKEN_PATH",
		get: func(s Settings) string { return s.AuthTokenPath },
		set: func(s *Settings, v string) { s.AuthTokenPath = v },
	},
	{
		key: "UPLOAD_ROLE",
		get: func(s Settings) string { return s.UploadRole },
		set: func(s *Settings, v string) { s.UploadRole = v },
	},
	{
		key: "UPLOAD_BUCKET",
		get: func(s Settings) string { return s.UploadBucket },
		set: func(s *Settings, v string) { s.UploadBucket = v },
	},
}

// LookupFunc resolves one environment key. Injecting it keeps the
// resolver testable without mutating the process environment.
type LookupFunc func(key string) (string, bool)

type resolver struct {
	explicit        Settings
	envFile         string
	envFileRequired bool
	profile         string
	lookup          LookupFunc
}

// Option configures Resolve.
type Option func(*resolver)

// WithSettings supplies explicit in-code values. Non-empty fields win
// over every other source; empty fields fall back per-field.
func WithSettings(s Settings) Option {
	return func(r *resolver) { r.explicit = s }
}

// WithEnvFile reads dotenv values from the given path. The file must
// exist; a missing file is a configuration error.
func WithEnvFile(path string) Option {
	return func(r *resolver) {
		r.envFile = path
		r.envFileRequired = true
	}
}

// WithLookup replaces the environment variable provider, which defaults
// to os.LookupEnv.
func WithLookup(fn LookupFunc) Option {
	return func(r *resolver) { r.lookup = fn }
}

// WithProfile pulls values from a named profile in the profiles file.
// Profile values rank below environment variables and dotenv values.
func WithProfile(name string) Option {
	return func(r *resolver) { r.profile = name }
}

// Resolve merges configuration from all sources into a Settings record.
// Per-field precedence: explicit value > environment variable > dotenv
// file > profile > built-in default.
func Resolve(opts ...Option) (Settings, error) {
	r := &resolver{
		envFile: DefaultEnvFile,
		lookup:  os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}

	dotenv, err := r.readEnvFile()
	if err != nil {
		return Settings{}, err
	}

	var profile Settings
	if r.profile != "" {
		profile, err = LoadProfile(r.profile)
		if err != nil {
			return Settings{}, err
		}
	}

	var merged Settings
	for _, f := range settingsFields {
		switch {
		case f.get(r.explicit) != "":
			f.set(&merged, f.get(r.explicit))
		case envValue(r.lookup, f.key) != "":
			f.set(&merged, envValue(r.lookup, f.key))
		case dotenv != nil && dotenv.GetString(EnvPrefix+"_"+f.key) != "":
			f.set(&merged, dotenv.GetString(EnvPrefix+"_"+f.key))
		case f.get(profile) != "":
			f.set(&merged, f.get(profile))
		default:
			f.set(&merged, f.def)
		}
	}
	return merged, nil
}

func envValue(lookup LookupFunc, key string) string {
	if v, ok := lookup(EnvPrefix + "_" + key); ok {
		return v
	}
	return ""
}

// readEnvFile loads the dotenv file into a dedicated viper instance.
// The default config.env is optional; an explicitly requested file is
// not.
func (r *resolver) readEnvFile() (*viper.Viper, error) {
	if _, err := os.Stat(r.envFile); err != nil {
		if r.envFileRequired {
			return nil, &ConfigError{
				Field:  "env_file",
				Reason: fmt.Sprintf("file not found: %s", r.envFile),
			}
		}
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(r.envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, &ConfigError{
			Field:  "env_file",
			Reason: fmt.Sprintf("cannot parse %s: %v", r.envFile, err),
		}
	}
	return v, nil
}
