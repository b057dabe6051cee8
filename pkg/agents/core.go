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

package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kadirpekel/sitesmith/pkg/baseline"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/llms"
	"github.com/kadirpekel/sitesmith/pkg/observability"
	"github.com/kadirpekel/sitesmith/pkg/utils"
)

// Core assembles the providers, the capability filter, and the three agents
// behind a single HandleTurn entry point. It owns no conversation state;
// continuity is entirely caller-supplied.
type Core struct {
	router   *Router
	registry *llms.Registry
}

// CoreOption configures a Core.
type CoreOption func(*coreOptions)

type coreOptions struct {
	metrics *observability.Metrics
}

// WithCoreMetrics attaches a metrics instrument set.
func WithCoreMetrics(m *observability.Metrics) CoreOption {
	return func(o *coreOptions) { o.metrics = m }
}

// NewCore builds the agent core from configuration.
func NewCore(cfg *config.Config, opts ...CoreOption) (*Core, error) {
	var options coreOptions
	for _, opt := range opts {
		opt(&options)
	}

	registry, err := llms.BuildRegistry(cfg.LLMs)
	if err != nil {
		return nil, fmt.Errorf("failed to build LLM registry: %w", err)
	}

	provider, err := registry.Get(cfg.Agents.LLM)
	if err != nil {
		registry.Close()
		return nil, err
	}

	// Every generation call carries a deadline so a hung provider cannot
	// hang the turn; expiry takes the same graceful path as a parse error.
	llm := llms.WithDeadline(provider, time.Duration(cfg.Agents.GenerationTimeout)*time.Second)

	counter, err := utils.NewTokenCounter(provider.ModelName())
	if err != nil {
		slog.Warn("Token counter unavailable, falling back to rough estimates", "error", err)
		counter = nil
	}

	filter := baseline.NewFilter(cfg.Baseline)

	var routerOpts []RouterOption
	if options.metrics != nil {
		routerOpts = append(routerOpts, WithMetrics(options.metrics))
	}

	router := NewRouter(
		NewOnboardingAgent(llm, cfg.Agents, counter, options.metrics),
		NewCodeGenerationAgent(llm, filter, cfg.Agents, counter, options.metrics),
		NewEditingAgent(llm, cfg.Agents, counter, options.metrics),
		routerOpts...,
	)

	return &Core{router: router, registry: registry}, nil
}

// HandleTurn is the entire external contract: one user prompt plus the
// caller-persisted context and artifact in, one AgentResponse out.
func (c *Core) HandleTurn(ctx context.Context, prompt string, conversation *convo.ConversationContext, code *convo.GeneratedCode) *convo.AgentResponse {
	return c.router.Route(ctx, Turn{Prompt: prompt, Context: conversation, Code: code})
}

// Close releases the underlying providers.
func (c *Core) Close() error {
	return c.registry.Close()
}
