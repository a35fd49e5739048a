// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package stac

import (
	"context"
	"encoding/json"
	"fmt"
)

func (s *StacService) Collections(ctx context.Context) ([]byte, int, error) {
	url := s.http.BuildURL([]string{"collections"}, nil)
	return s.http.Do(ctx, "GET", url, nil)
}

func (s *StacService) Collection(ctx context.Context, collectionID string) ([]byte, int, error) {
	if collectionID == "" {
		return nil, 0, fmt.Errorf("you must specify a collection id")
	}
	url := s.http.BuildURL([]string{"collections", collectionID}, nil)
	return s.http.Do(ctx, "GET", url, nil)
}

func (s *StacService) Items(ctx context.Context, req ItemsRequest) ([]byte, int, error) {
	if req.CollectionID == "" {
		return nil, 0, fmt.Errorf("you must specify a collection id")
	}
	url := s.http.BuildURL([]string{"collections", req.CollectionID, "items"}, req.Params)
	return s.http.Do(ctx, "GET", url, nil)
}

func (s *StacService) Item(ctx context.Context, collectionID, itemID string) ([]byte, int, error) {
	if collectionID == "" || itemID == "" {
		return nil, 0, fmt.Errorf("you must specify collection id and item id")
	}
	url := s.http.BuildURL([]string{"collections", collectionID, "items", itemID}, nil)
	return s.http.Do(ctx, "GET", url, nil)
}

// ItemsAllPages follows rel=next links until the catalog stops
// paginating, collecting every feature.
func (s *StacService) ItemsAllPages(ctx context.Context, req ItemsRequest) ([]interface{}, error) {
	if req.CollectionID == "" {
		return nil, fmt.Errorf("you must specify a collection id")
	}

	var features []interface{}
	url := s.http.BuildURL([]string{"collections", req.CollectionID, "items"}, req.Params)

	for url != "" {
		body, status, err := s.http.Do(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}
		if status != 200 {
			return nil, fmt.Errorf("catalog responded with status %d", status)
		}

		m := map[string]interface{}{}
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("json parsing failed: %w", err)
		}

		pageFeatures, _ := m["features"].([]interface{})
		features = append(features, pageFeatures...)

		url = nextLink(m)
	}

	return features, nil
}

// nextLink extracts the rel=next href from a STAC response.
func nextLink(m map[string]interface{}) string {
	links, _ := m["links"].([]interface{})
	for _, l := range links {
		lm, ok := l.(map[string]interface{})
		if !ok {
			continue
		}
		if rel, _ := lm["rel"].(string); rel != "next" {
			continue
		}
		if href, _ := lm["href"].(string); href != "" {
			return href
		}
	}
	return ""
}
