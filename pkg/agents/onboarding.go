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

	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/extract"
	"github.com/kadirpekel/sitesmith/pkg/llms"
	"github.com/kadirpekel/sitesmith/pkg/observability"
	"github.com/kadirpekel/sitesmith/pkg/utils"
)

const (
	greetingSpeech = "Hi! I'm here to help you build a landing page for your business. Let's start simple: what's the name of your business or project?"

	onboardingApology = "Sorry, I had trouble processing that. Could you try again?"
)

// onboardingDecision is the per-turn reply contract for the interview.
// The model owns the decision of what to ask next and when to stop; the
// agent only enforces the shape of the reply.
type onboardingDecision struct {
	Speech      string                `json:"speech"`
	UI          *convo.UIElement      `json:"ui"`
	UpdatedData map[string]any        `json:"updated_data"`
	NextState   convo.OnboardingState `json:"next_state"`
}

// OnboardingAgent runs the 5-state interview that populates the brief.
type OnboardingAgent struct {
	llm     llms.Provider
	cfg     *config.AgentsConfig
	counter *utils.TokenCounter
	metrics *observability.Metrics
}

// NewOnboardingAgent creates the interview agent.
func NewOnboardingAgent(llm llms.Provider, cfg *config.AgentsConfig, counter *utils.TokenCounter, metrics *observability.Metrics) *OnboardingAgent {
	return &OnboardingAgent{llm: llm, cfg: cfg, counter: counter, metrics: metrics}
}

func (a *OnboardingAgent) Name() string {
	return "onboarding"
}

// Handle runs one interview turn.
//
// Turn zero (nil context) never touches the model: the greeting and its
// TEXT_INPUT affordance are synthesized deterministically. On any
// generation or parse failure the incoming context is returned untouched,
// so a failed turn can never corrupt state.
func (a *OnboardingAgent) Handle(ctx context.Context, turn Turn) *convo.AgentResponse {
	if turn.Context == nil {
		return a.greet()
	}

	prompt := buildOnboardingPrompt(turn.Context, turn.Prompt, a.cfg.HistoryWindow)
	warnPromptSize(a.counter, a.cfg.PromptTokenWarn, a.Name(), prompt)

	raw, err := a.llm.Generate(ctx, onboardingSystemPrompt, prompt)
	if err != nil {
		slog.Error("Onboarding generation failed", "error", err)
		a.metrics.RecordLLMError()
		return a.fail(turn.Context)
	}

	decision, err := parseOnboardingDecision(raw)
	if err != nil {
		slog.Error("Onboarding reply rejected", "error", err)
		a.metrics.RecordParseFailure()
		return a.fail(turn.Context)
	}

	updated := turn.Context.Clone()
	updated.Append(convo.SpeakerUser, turn.Prompt)
	updated.Append(convo.SpeakerAgent, decision.Speech)
	updated.Merge(decision.UpdatedData)

	if decision.NextState == convo.StateFinalizing {
		// The handoff is encoded entirely in the returned context; the next
		// turn routes to generation without any direct invocation here.
		updated.OnboardingState = convo.StateFinalizing
		updated.Goal = convo.GoalGeneratePage
		return &convo.AgentResponse{
			ID:      convo.NewResponseID(),
			Status:  convo.StatusProcessing,
			Speech:  decision.Speech,
			UI:      convo.NewLoading("Designing your landing page..."),
			Action:  &convo.Action{Type: convo.ActionDelegate, Goal: convo.GoalGeneratePage},
			Context: updated,
		}
	}

	updated.OnboardingState = decision.NextState

	ui := decision.UI
	if ui == nil {
		ui = convo.NewTextInput("Type your answer...")
	}

	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusAwaitingInput,
		Speech:  decision.Speech,
		UI:      ui,
		Action:  &convo.Action{Type: convo.ActionRequestUserInput},
		Context: updated,
	}
}

func (a *OnboardingAgent) greet() *convo.AgentResponse {
	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusAwaitingInput,
		Speech:  greetingSpeech,
		UI:      convo.NewTextInput("e.g. Blue Harbor Coffee"),
		Action:  &convo.Action{Type: convo.ActionRequestUserInput},
		Context: greetingContext(),
	}
}

func greetingContext() *convo.ConversationContext {
	c := convo.NewContext()
	c.Append(convo.SpeakerAgent, greetingSpeech)
	return c
}

// fail returns the graceful interview failure: an apology with the
// incoming context passed through unmodified.
func (a *OnboardingAgent) fail(incoming *convo.ConversationContext) *convo.AgentResponse {
	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusAwaitingInput,
		Speech:  onboardingApology,
		Action:  &convo.Action{Type: convo.ActionRequestUserInput},
		Context: incoming,
	}
}

func parseOnboardingDecision(raw string) (*onboardingDecision, error) {
	var decision onboardingDecision
	if err := extract.Decode(raw, &decision); err != nil {
		return nil, err
	}
	if !convo.KnownOnboardingState(decision.NextState) {
		return nil, fmt.Errorf("%w: unknown next_state %q", convo.ErrMalformedModelOutput, decision.NextState)
	}
	return &decision, nil
}
