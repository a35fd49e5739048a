// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// ProfilesFileName is the INI file in the user's home directory holding
// named settings profiles, one section per profile.
const ProfilesFileName = ".prescient.ini"

const currentProfileKey = "current_profile"

// profilesPath can be overridden in tests.
var profilesPath = defaultProfilesPath

func defaultProfilesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ProfilesFileName)
}

// SaveProfile persists the non-empty fields of s into the named profile
// section, creating the file on first use. The DEFAULT section records
// the last saved profile as current_profile.
func SaveProfile(name string, s Settings) error {
	if name == "" {
		return &ConfigError{Field: "profile", Reason: "profile name is required"}
	}

	path := profilesPath()
	cfg, err := ini.Load(path)
	if err != nil {
		cfg = ini.Empty()
	}

	sec := cfg.Section(name)
	for _, f := range settingsFields {
		if v := f.get(s); v != "" {
			sec.Key(EnvPrefix + "_" + f.key).SetValue(v)
		}
	}
	cfg.Section("DEFAULT").Key(currentProfileKey).SetValue(name)

	if err := cfg.SaveTo(path); err != nil {
		return &ConfigError{
			Field:  "profile",
			Reason: fmt.Sprintf("cannot write %s: %v", path, err),
		}
	}
	return nil
}

// LoadProfile reads the named profile section back into a Settings
// record. An empty name selects the DEFAULT section's current_profile.
func LoadProfile(name string) (Settings, error) {
	path := profilesPath()
	cfg, err := ini.Load(path)
	if err != nil {
		return Settings{}, &ConfigError{
			Field:  "profile",
			Reason: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	if name == "" {
		name = cfg.Section("DEFAULT").Key(currentProfileKey).String()
	}
	if name == "" || !cfg.HasSection(name) {
		return Settings{}, &ConfigError{
			Field:  "profile",
			Reason: fmt.Sprintf("profile %q not found in %s", name, path),
		}
	}

	sec := cfg.Section(name)
	var s Settings
	for _, f := range settingsFields {
		if v := sec.Key(EnvPrefix + "_" + f.key).String(); v != "" {
			f.set(&s, v)
		}
	}
	return s, nil
}
