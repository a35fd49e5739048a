// SPDX-FileCopyrightText: © 2025 Prescient Earth
//
// SPDX-License-Identifier: Apache-2.0

package stac

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Search POSTs a STAC item search. The body can come from a JSON or
// YAML file, or be assembled from the request fields.
func (s *StacService) Search(ctx context.Context, req SearchRequest) ([]byte, int, error) {
	var bodyMap map[string]any

	if req.FilePath != "" {
		data, err := os.ReadFile(req.FilePath)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read search body file: %w", err)
		}
		jsonBytes, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, 0, fmt.Errorf("yaml to json failed: %w", err)
		}
		if err := json.Unmarshal(jsonBytes, &bodyMap); err != nil {
			return nil, 0, fmt.Errorf("failed to parse after JSON conversion: %w", err)
		}
	} else {
		bodyMap = map[string]any{}
		if len(req.Collections) > 0 {
			bodyMap["collections"] = req.Collections
		}
		if len(req.IDs) > 0 {
			bodyMap["ids"] = req.IDs
		}
		if len(req.Bbox) > 0 {
			bodyMap["bbox"] = req.Bbox
		}
		if req.Datetime != "" {
			bodyMap["datetime"] = req.Datetime
		}
		if req.Limit > 0 {
			bodyMap["limit"] = req.Limit
		}
	}

	body, err := json.Marshal(bodyMap)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search body: %w", err)
	}

	url := s.http.BuildURL([]string{"search"}, nil)
	return s.http.Do(ctx, "POST", url, body)
}
