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
	"log/slog"
	"time"

	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/observability"
)

const (
	missingArtifactSpeech = "I can't edit anything yet because no page has been generated. Let's build one first."

	internalErrorSpeech = "Something unexpected went wrong on my end. Please try again."
)

// Router dispatches each turn to exactly one agent, keyed on the phase
// derived from the context goal. It is the single entry point of the core.
type Router struct {
	onboarding Agent
	codegen    Agent
	editing    Agent
	metrics    *observability.Metrics
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithMetrics attaches a metrics instrument set to the router.
func WithMetrics(m *observability.Metrics) RouterOption {
	return func(r *Router) { r.metrics = m }
}

// NewRouter creates a router over the three agents.
func NewRouter(onboarding, codegen, editing Agent, opts ...RouterOption) *Router {
	r := &Router{onboarding: onboarding, codegen: codegen, editing: editing}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route handles one turn.
//
// Routing table, first match wins: edit_code requires an artifact and goes
// to editing; generate_landing_page goes to codegen; everything else,
// including a nil context and unrecognized goals, falls back to onboarding.
// A panic escaping an agent is converted into a generic internal-error
// response here; each agent is expected to catch its own failures, so this
// is the last line of defense.
func (r *Router) Route(ctx context.Context, turn Turn) (resp *convo.AgentResponse) {
	start := time.Now()
	agent := r.agentFor(turn)

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Agent panicked", "agent", agent.Name(), "panic", rec)
			resp = internalErrorResponse(turn.Context)
		}
		if resp != nil {
			r.metrics.ObserveTurn(agent.Name(), string(resp.Status), time.Since(start))
		}
	}()

	if convo.PhaseFor(turn.Context) == convo.PhaseEditing && turn.Code == nil {
		slog.Error("Edit requested without an artifact",
			"error", convo.ErrMissingArtifact)
		return missingArtifactResponse(turn.Context)
	}

	slog.Debug("Routing turn", "agent", agent.Name(), "phase", convo.PhaseFor(turn.Context).String())
	return agent.Handle(ctx, turn)
}

func (r *Router) agentFor(turn Turn) Agent {
	switch convo.PhaseFor(turn.Context) {
	case convo.PhaseEditing:
		return r.editing
	case convo.PhaseGeneration:
		return r.codegen
	default:
		return r.onboarding
	}
}

// missingArtifactResponse is the router-level precondition failure for an
// edit with no artifact. No agent is invoked.
func missingArtifactResponse(c *convo.ConversationContext) *convo.AgentResponse {
	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusError,
		Speech:  missingArtifactSpeech,
		Context: c,
	}
}

// internalErrorResponse is the catch-all payload, distinct from the
// agent-level graceful ERROR and AWAITING_INPUT responses.
func internalErrorResponse(c *convo.ConversationContext) *convo.AgentResponse {
	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusError,
		Speech:  internalErrorSpeech,
		Context: c,
	}
}
