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

import "fmt"

// AgentsConfig configures the conversation agents.
type AgentsConfig struct {
	// LLM names the provider (from the llms section) the agents use.
	LLM string `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM,description=Name of the provider the agents use,default=default"`

	// HistoryWindow is how many recent history entries the onboarding agent
	// shows the model when deciding the next interview step.
	HistoryWindow int `yaml:"history_window,omitempty" json:"history_window,omitempty" jsonschema:"title=History Window,description=Recent history entries included in onboarding prompts,default=6"`

	// GenerationTimeout bounds a single generation call, in seconds. A
	// timed-out call follows the same graceful-failure path as a parse
	// error, so a hung provider cannot hang the turn forever.
	GenerationTimeout int `yaml:"generation_timeout,omitempty" json:"generation_timeout,omitempty" jsonschema:"title=Generation Timeout,description=Per-call generation deadline in seconds,default=180"`

	// PromptTokenWarn is the estimated-token threshold above which agents
	// log a warning. History is unbounded by design; this makes the growth
	// visible to operators instead of silently inflating prompts.
	PromptTokenWarn int `yaml:"prompt_token_warn,omitempty" json:"prompt_token_warn,omitempty" jsonschema:"title=Prompt Token Warn,description=Estimated prompt tokens that trigger a warning log,default=8000"`
}

// SetDefaults applies defaults. llmNames is used to pick a provider when
// only one is defined.
func (c *AgentsConfig) SetDefaults(llmNames []string) {
	if c.LLM == "" {
		if len(llmNames) == 1 {
			c.LLM = llmNames[0]
		} else {
			c.LLM = "default"
		}
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = 6
	}
	if c.GenerationTimeout == 0 {
		c.GenerationTimeout = 180
	}
	if c.PromptTokenWarn == 0 {
		c.PromptTokenWarn = 8000
	}
}

// Validate checks the agents configuration.
func (c *AgentsConfig) Validate() error {
	if c.HistoryWindow < 1 {
		return fmt.Errorf("history_window must be at least 1")
	}
	if c.GenerationTimeout < 1 {
		return fmt.Errorf("generation_timeout must be at least 1 second")
	}
	return nil
}
