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

// Package config defines the sitesmith configuration model and its loading
// pipeline: read bytes from a provider, parse YAML, expand environment
// variables, decode, apply defaults, validate.
package config

import (
	"fmt"
	"sort"
)

// Config is the root configuration.
type Config struct {
	// Name labels this deployment in logs.
	Name string `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"title=Name,description=Deployment name used in logs"`

	// LLMs defines the available text-generation providers by name.
	LLMs map[string]*LLMConfig `yaml:"llms,omitempty" json:"llms,omitempty" jsonschema:"title=LLM Providers,description=Named text-generation providers"`

	// Agents configures the conversation agents.
	Agents *AgentsConfig `yaml:"agents,omitempty" json:"agents,omitempty" jsonschema:"title=Agents,description=Conversation agent settings"`

	// Baseline configures the baseline-safe CSS property dataset.
	Baseline *BaselineConfig `yaml:"baseline,omitempty" json:"baseline,omitempty" jsonschema:"title=Baseline,description=Baseline web-feature dataset settings"`

	// Server configures the HTTP shim.
	Server *ServerConfig `yaml:"server,omitempty" json:"server,omitempty" jsonschema:"title=Server,description=HTTP server settings"`

	// Logger configures logging.
	Logger *LoggerConfig `yaml:"logger,omitempty" json:"logger,omitempty" jsonschema:"title=Logger,description=Logging settings"`
}

// SetDefaults applies defaults to every section, creating missing sections.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "sitesmith"
	}
	if len(c.LLMs) == 0 {
		c.LLMs = map[string]*LLMConfig{"default": {}}
	}
	for _, llm := range c.LLMs {
		llm.SetDefaults()
	}
	if c.Agents == nil {
		c.Agents = &AgentsConfig{}
	}
	c.Agents.SetDefaults(c.llmNames())
	if c.Baseline == nil {
		c.Baseline = &BaselineConfig{}
	}
	c.Baseline.SetDefaults()
	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	c.Server.SetDefaults()
	if c.Logger == nil {
		c.Logger = &LoggerConfig{}
	}
	c.Logger.SetDefaults()
}

// Validate checks the whole configuration, including cross-section
// references.
func (c *Config) Validate() error {
	for name, llm := range c.LLMs {
		if err := llm.Validate(); err != nil {
			return fmt.Errorf("llms.%s: %w", name, err)
		}
	}
	if err := c.Agents.Validate(); err != nil {
		return fmt.Errorf("agents: %w", err)
	}
	if _, ok := c.LLMs[c.Agents.LLM]; !ok {
		return fmt.Errorf("agents.llm references unknown provider %q (defined: %v)", c.Agents.LLM, c.llmNames())
	}
	if err := c.Baseline.Validate(); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// AgentLLM returns the provider config the agents should use.
func (c *Config) AgentLLM() *LLMConfig {
	return c.LLMs[c.Agents.LLM]
}

func (c *Config) llmNames() []string {
	names := make([]string, 0, len(c.LLMs))
	for name := range c.LLMs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
