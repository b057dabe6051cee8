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

	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/llms"
	"github.com/kadirpekel/sitesmith/pkg/observability"
	"github.com/kadirpekel/sitesmith/pkg/utils"
)

const (
	editingSuccessSpeech = "Done! I've applied your change. Anything else?"

	editingApology = "Sorry, I couldn't apply that change. Could you rephrase what you'd like me to do?"
)

// EditingAgent applies a targeted, minimal-diff modification to an existing
// artifact. The router guarantees an artifact is present before dispatching
// here; the agent assumes it is always given a complete one.
type EditingAgent struct {
	llm     llms.Provider
	cfg     *config.AgentsConfig
	counter *utils.TokenCounter
	metrics *observability.Metrics
}

// NewEditingAgent creates the editing agent.
func NewEditingAgent(llm llms.Provider, cfg *config.AgentsConfig, counter *utils.TokenCounter, metrics *observability.Metrics) *EditingAgent {
	return &EditingAgent{llm: llm, cfg: cfg, counter: counter, metrics: metrics}
}

func (a *EditingAgent) Name() string {
	return "editing"
}

// Handle applies one edit. Unlike onboarding, a failed attempt IS recorded
// in history (user prompt plus a fixed apology) to preserve the continuity
// of the edit conversation; the goal stays edit_code either way.
func (a *EditingAgent) Handle(ctx context.Context, turn Turn) *convo.AgentResponse {
	prompt := buildEditingPrompt(turn.Code, turn.Prompt)
	warnPromptSize(a.counter, a.cfg.PromptTokenWarn, a.Name(), prompt)

	raw, err := a.llm.Generate(ctx, editingSystemPrompt, prompt)
	if err != nil {
		slog.Error("Edit generation failed", "error", err)
		a.metrics.RecordLLMError()
		return a.fail(turn)
	}

	code, err := decodeArtifact(raw)
	if err != nil {
		slog.Error("Edited artifact rejected", "error", err)
		a.metrics.RecordParseFailure()
		return a.fail(turn)
	}

	updated := turn.Context.Clone()
	updated.Append(convo.SpeakerUser, turn.Prompt)
	updated.Append(convo.SpeakerAgent, editingSuccessSpeech)
	updated.Goal = convo.GoalEditCode

	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusComplete,
		Speech:  editingSuccessSpeech,
		Action:  &convo.Action{Type: convo.ActionGenerationComplete, Code: code},
		Context: updated,
	}
}

func (a *EditingAgent) fail(turn Turn) *convo.AgentResponse {
	updated := turn.Context.Clone()
	updated.Append(convo.SpeakerUser, turn.Prompt)
	updated.Append(convo.SpeakerAgent, editingApology)

	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusAwaitingInput,
		Speech:  editingApology,
		Action:  &convo.Action{Type: convo.ActionRequestUserInput},
		Context: updated,
	}
}
