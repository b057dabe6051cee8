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

package config

// BaselineConfig configures the web-platform feature dataset used to
// constrain generated CSS.
type BaselineConfig struct {
	// Dataset is the path to the baseline feature dataset (JSON). When the
	// file is missing or unreadable the constraint degrades to non-binding
	// rather than failing turns.
	Dataset string `yaml:"dataset,omitempty" json:"dataset,omitempty" jsonschema:"title=Dataset,description=Path to the baseline web-feature dataset (JSON)"`
}

// SetDefaults applies defaults.
func (c *BaselineConfig) SetDefaults() {
	if c.Dataset == "" {
		c.Dataset = "web-features.json"
	}
}

// Validate checks the baseline configuration. The dataset path is not
// required to exist at load time; absence degrades at first use.
func (c *BaselineConfig) Validate() error {
	return nil
}
