// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package stac

type ItemsRequest struct {
	// CollectionID selects the collection (required).
	CollectionID string

	// Params are passed through as query parameters (limit, datetime,
	// bbox, ...).
	Params map[string]string
}

type SearchRequest struct {
	// FilePath points to a JSON or YAML file holding the search body.
	// When set, the body fields below are ignored.
	FilePath string

	Collections []string
	IDs         []string
	Bbox        []float64
	Datetime    string
	Limit       int
}
