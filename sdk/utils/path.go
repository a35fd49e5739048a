// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ParsedPath is a decomposed storage URL such as
// s3://bucket/prefix/key.
type ParsedPath struct {
	Scheme string
	Host   string
	Path   string
}

// ParsePath splits a storage URL into scheme, host (bucket) and key
// path. The returned Path has no leading slash.
func ParsePath(raw string) (*ParsedPath, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid path %q: scheme and bucket are required", raw)
	}
	return &ParsedPath{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// String reassembles the URL.
func (p *ParsedPath) String() string {
	return fmt.Sprintf("%s://%s/%s", p.Scheme, p.Host, p.Path)
}
