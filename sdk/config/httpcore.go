// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TokenProvider returns the bearer token for a request. It runs once
// per call so lazily brokered tokens are acquired only when a request
// actually goes out.
type TokenProvider func(ctx context.Context) (string, error)

type CoreHTTP interface {
	BuildURL(segments []string, params map[string]string) string
	Do(ctx context.Context, method, url string, data []byte) ([]byte, int, error)
}

type httpCore struct {
	httpClient *http.Client
	baseURL    string
	token      TokenProvider
}

// NewHTTPCore wires a bearer-authenticated HTTP client rooted at
// baseURL. A nil token provider sends unauthenticated requests.
func NewHTTPCore(httpClient *http.Client, baseURL string, token TokenProvider) CoreHTTP {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &httpCore{httpClient: httpClient, baseURL: baseURL, token: token}
}

func (c *httpCore) BuildURL(segments []string, params map[string]string) string {
	base := strings.TrimSuffix(c.baseURL, "/")
	for _, seg := range segments {
		if seg != "" {
			base += "/" + strings.Trim(seg, "/")
		}
	}
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) > 0 {
		base += "?" + q.Encode()
	}
	return base
}

func (c *httpCore) Do(ctx context.Context, method, url string, data []byte) ([]byte, int, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		tok, err := c.token(ctx)
		if err != nil {
			return nil, 0, err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, rerr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var m map[string]any
		if json.Unmarshal(b, &m) == nil {
			if msg, ok := m["message"].(string); ok && msg != "" {
				return b, resp.StatusCode, fmt.Errorf("api responded with: %s - %s", resp.Status, msg)
			}
		}
		return b, resp.StatusCode, fmt.Errorf("api responded with: %s", resp.Status)
	}
	return b, resp.StatusCode, rerr
}
