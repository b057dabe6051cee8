// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package extract isolates the JSON object embedded in a free-form model
// reply. Generative models routinely wrap their JSON in prose, apologies,
// and markdown code fences; the contract here is deliberately blunt: take
// the substring from the first '{' to the last '}' inclusive and parse it.
// Anything beyond that bracket-trim is a hard failure propagated to the
// calling agent — no partial recovery.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kadirpekel/sitesmith/pkg/convo"
)

// Object returns the JSON object isolated from raw. It fails with
// convo.ErrMalformedModelOutput when no object can be isolated or the
// isolated text is not valid JSON.
func Object(raw string) ([]byte, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", convo.ErrMalformedModelOutput)
	}
	candidate := []byte(raw[start : end+1])
	if !json.Valid(candidate) {
		return nil, fmt.Errorf("%w: isolated text is not valid JSON", convo.ErrMalformedModelOutput)
	}
	return candidate, nil
}

// Decode isolates the JSON object in raw and unmarshals it into v.
func Decode(raw string, v any) error {
	data, err := Object(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", convo.ErrMalformedModelOutput, err)
	}
	return nil
}
