// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

// Package stac reads the Prescient STAC catalog. Requests carry the
// bearer token lazily brokered by the client facade.
package stac

import (
	"errors"
	"net/http"

	"github.com/prescient-earth/prescient-sdk-go/sdk/client"
	"github.com/prescient-earth/prescient-sdk-go/sdk/config"
)

type StacService struct {
	http config.CoreHTTP
}

func NewStacService(c *client.Client) (*StacService, error) {
	if c == nil {
		return nil, errors.New("client is required")
	}
	return &StacService{
		http: config.NewHTTPCore(nil, c.STACCatalogURL(), c.TokenProvider()),
	}, nil
}

// NewStacServiceWithHTTP wires a custom HTTP client, mainly for tests.
func NewStacServiceWithHTTP(c *client.Client, httpClient *http.Client) (*StacService, error) {
	if c == nil {
		return nil, errors.New("client is required")
	}
	return &StacService{
		http: config.NewHTTPCore(httpClient, c.STACCatalogURL(), c.TokenProvider()),
	}, nil
}
