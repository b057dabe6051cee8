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

	"github.com/kadirpekel/sitesmith/pkg/baseline"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/llms"
	"github.com/kadirpekel/sitesmith/pkg/observability"
	"github.com/kadirpekel/sitesmith/pkg/utils"
)

const (
	codegenSuccessSpeech = "Your landing page is ready! Take a look and tell me what you'd like to change."

	codegenFailureSpeech = "Something went wrong while generating your page. Want to try again?"
)

// CodeGenerationAgent turns a completed brief into the website artifact in
// a single generation call. It performs no further interview; the brief is
// assumed complete by the time routing reaches it.
type CodeGenerationAgent struct {
	llm     llms.Provider
	filter  *baseline.Filter
	cfg     *config.AgentsConfig
	counter *utils.TokenCounter
	metrics *observability.Metrics
}

// NewCodeGenerationAgent creates the generation agent.
func NewCodeGenerationAgent(llm llms.Provider, filter *baseline.Filter, cfg *config.AgentsConfig, counter *utils.TokenCounter, metrics *observability.Metrics) *CodeGenerationAgent {
	return &CodeGenerationAgent{llm: llm, filter: filter, cfg: cfg, counter: counter, metrics: metrics}
}

func (a *CodeGenerationAgent) Name() string {
	return "codegen"
}

// Handle performs the one-shot brief-to-artifact transformation. On failure
// the goal is reset to onboarding so a retry re-enters the router there
// instead of looping on a broken generation path.
func (a *CodeGenerationAgent) Handle(ctx context.Context, turn Turn) *convo.AgentResponse {
	c := turn.Context
	if c == nil {
		c = convo.NewContext()
	}

	prompt := buildCodegenPrompt(c, a.filter.Properties(ctx))
	warnPromptSize(a.counter, a.cfg.PromptTokenWarn, a.Name(), prompt)

	raw, err := a.llm.Generate(ctx, codegenSystemPrompt, prompt)
	if err != nil {
		slog.Error("Code generation failed", "error", err)
		a.metrics.RecordLLMError()
		return a.fail(c)
	}

	code, err := decodeArtifact(raw)
	if err != nil {
		slog.Error("Generated artifact rejected", "error", err)
		a.metrics.RecordParseFailure()
		return a.fail(c)
	}

	updated := c.Clone()
	updated.Goal = convo.GoalCompleted
	updated.Append(convo.SpeakerAgent, codegenSuccessSpeech)

	return &convo.AgentResponse{
		ID:      convo.NewResponseID(),
		Status:  convo.StatusComplete,
		Speech:  codegenSuccessSpeech,
		Action:  &convo.Action{Type: convo.ActionGenerationComplete, Code: code},
		Context: updated,
	}
}

func (a *CodeGenerationAgent) fail(c *convo.ConversationContext) *convo.AgentResponse {
	updated := c.Clone()
	updated.Goal = convo.GoalOnboardUser

	return &convo.AgentResponse{
		ID:     convo.NewResponseID(),
		Status: convo.StatusError,
		Speech: codegenFailureSpeech,
		UI: convo.NewButtonGroup(convo.Button{
			Label: "Retry Generation",
			Value: "retry_generation",
		}),
		Context: updated,
	}
}
