package agents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/sitesmith/pkg/baseline"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/observability"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) ModelName() string { return "stub" }
func (s *stubLLM) Close() error      { return nil }

func testAgentsConfig() *config.AgentsConfig {
	return &config.AgentsConfig{LLM: "default", HistoryWindow: 6, GenerationTimeout: 180}
}

func testFilter(t *testing.T) *baseline.Filter {
	t.Helper()
	return baseline.NewFilter(&config.BaselineConfig{Dataset: "does-not-exist.json"})
}

func midInterviewContext() *convo.ConversationContext {
	c := convo.NewContext()
	c.OnboardingState = convo.StateCoreInfo
	c.Append(convo.SpeakerAgent, "What does your business do?")
	c.Merge(map[string]any{"business_name": "Blue Harbor Coffee"})
	return c
}

func TestOnboardingTurnZeroIsDeterministic(t *testing.T) {
	llm := &stubLLM{}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "hello"})

	require.NotNil(t, resp.Context)
	assert.Equal(t, convo.StateGreeting, resp.Context.OnboardingState)
	assert.Equal(t, convo.GoalOnboardUser, resp.Context.Goal)
	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	require.NotNil(t, resp.UI)
	assert.Equal(t, convo.UITextInput, resp.UI.Type)
	assert.Zero(t, llm.calls, "turn zero must not call the model")
}

func TestOnboardingFailureLeavesContextUntouched(t *testing.T) {
	incoming := midInterviewContext()
	before, err := json.Marshal(incoming)
	require.NoError(t, err)

	llm := &stubLLM{err: assert.AnError}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "we sell coffee", Context: incoming})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	assert.Nil(t, resp.UI)
	assert.Same(t, incoming, resp.Context)

	after, err := json.Marshal(resp.Context)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed turn must not mutate the context")
}

func TestOnboardingMalformedReplyFails(t *testing.T) {
	incoming := midInterviewContext()
	llm := &stubLLM{reply: "I could not decide what to ask next."}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "hm", Context: incoming})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	assert.Same(t, incoming, resp.Context)
	assert.Len(t, incoming.History, 1)
}

func TestOnboardingUnknownNextStateFails(t *testing.T) {
	incoming := midInterviewContext()
	llm := &stubLLM{reply: `{"speech":"ok","updated_data":{},"next_state":"WRAP_UP"}`}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "done", Context: incoming})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	assert.Same(t, incoming, resp.Context)
}

func TestOnboardingAdvancesStateAndMergesData(t *testing.T) {
	incoming := midInterviewContext()
	llm := &stubLLM{reply: `{
		"speech": "Who are your customers?",
		"ui": {"type": "TEXT_INPUT", "props": {"placeholder": "e.g. commuters"}},
		"updated_data": {"business_description": "specialty coffee roaster"},
		"next_state": "CORE_INFO"
	}`}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "we roast coffee", Context: incoming})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	require.NotNil(t, resp.Action)
	assert.Equal(t, convo.ActionRequestUserInput, resp.Action.Type)
	assert.Equal(t, convo.StateCoreInfo, resp.Context.OnboardingState)
	assert.Equal(t, "specialty coffee roaster", resp.Context.CollectedInfo["business_description"])
	assert.Equal(t, "Blue Harbor Coffee", resp.Context.CollectedInfo["business_name"])
	assert.Len(t, resp.Context.History, 3)

	// Incoming context must be untouched; the agent mutates a clone.
	assert.Len(t, incoming.History, 1)
	_, mutated := incoming.CollectedInfo["business_description"]
	assert.False(t, mutated)
}

func TestOnboardingFinalizingHandoff(t *testing.T) {
	incoming := midInterviewContext()
	incoming.OnboardingState = convo.StateBranding
	llm := &stubLLM{reply: `{
		"speech": "Great, I have everything I need!",
		"updated_data": {"brand_colors": "#1a6b8f"},
		"next_state": "FINALIZING"
	}`}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "navy blue", Context: incoming})

	assert.Equal(t, convo.StatusProcessing, resp.Status)
	require.NotNil(t, resp.Action)
	assert.Equal(t, convo.ActionDelegate, resp.Action.Type)
	assert.Equal(t, convo.GoalGeneratePage, resp.Action.Goal)
	assert.Equal(t, convo.GoalGeneratePage, resp.Context.Goal)
	assert.Equal(t, convo.StateFinalizing, resp.Context.OnboardingState)
}

func TestCodegenEmptyStringsAreValid(t *testing.T) {
	// css/js as empty strings are present, hence valid; only a missing key
	// makes the artifact incomplete.
	llm := &stubLLM{reply: `{"html":"<div/>","css":"","js":""}`}
	agent := NewCodeGenerationAgent(llm, testFilter(t), testAgentsConfig(), nil, nil)

	c := midInterviewContext()
	c.Goal = convo.GoalGeneratePage

	resp := agent.Handle(context.Background(), Turn{Context: c})

	assert.Equal(t, convo.StatusComplete, resp.Status)
	require.NotNil(t, resp.Action)
	assert.Equal(t, convo.ActionGenerationComplete, resp.Action.Type)
	require.NotNil(t, resp.Action.Code)
	assert.Equal(t, "<div/>", resp.Action.Code.HTML)
	assert.Equal(t, "", resp.Action.Code.CSS)
	assert.Equal(t, "", resp.Action.Code.JS)
	assert.Equal(t, convo.GoalCompleted, resp.Context.Goal)
}

func TestCodegenMissingFieldIsIncomplete(t *testing.T) {
	llm := &stubLLM{reply: `{"html":"<div/>","css":"body{}"}`}
	agent := NewCodeGenerationAgent(llm, testFilter(t), testAgentsConfig(), nil, nil)

	c := midInterviewContext()
	c.Goal = convo.GoalGeneratePage

	resp := agent.Handle(context.Background(), Turn{Context: c})

	assert.Equal(t, convo.StatusError, resp.Status)
	assert.Nil(t, resp.Action)
	require.NotNil(t, resp.UI)
	assert.Equal(t, convo.UIButtonGroup, resp.UI.Type)

	var props convo.ButtonGroupProps
	require.NoError(t, resp.UI.DecodeProps(&props))
	require.Len(t, props.Buttons, 1)
	assert.Equal(t, "Retry Generation", props.Buttons[0].Label)

	// A failed generation re-enters the router at onboarding on retry.
	assert.Equal(t, convo.GoalOnboardUser, resp.Context.Goal)
}

func TestCodegenGenerationErrorResetsGoal(t *testing.T) {
	llm := &stubLLM{err: assert.AnError}
	agent := NewCodeGenerationAgent(llm, testFilter(t), testAgentsConfig(), nil, nil)

	c := midInterviewContext()
	c.Goal = convo.GoalGeneratePage

	resp := agent.Handle(context.Background(), Turn{Context: c})

	assert.Equal(t, convo.StatusError, resp.Status)
	assert.Equal(t, convo.GoalOnboardUser, resp.Context.Goal)
}

func editContext() *convo.ConversationContext {
	c := convo.NewContext()
	c.Goal = convo.GoalEditCode
	c.Append(convo.SpeakerAgent, "Your page is ready.")
	return c
}

func TestEditingRoundTrip(t *testing.T) {
	llm := &stubLLM{reply: `{"html":"<p>B</p>","css":"p{color:red}","js":""}`}
	agent := NewEditingAgent(llm, testAgentsConfig(), nil, nil)

	code := &convo.GeneratedCode{HTML: "<p>A</p>", CSS: "p{color:red}", JS: ""}
	resp := agent.Handle(context.Background(), Turn{
		Prompt:  "change text to B",
		Context: editContext(),
		Code:    code,
	})

	assert.Equal(t, convo.StatusComplete, resp.Status)
	require.NotNil(t, resp.Action)
	assert.Equal(t, convo.ActionGenerationComplete, resp.Action.Type)
	require.NotNil(t, resp.Action.Code)
	assert.Equal(t, "<p>B</p>", resp.Action.Code.HTML)
	assert.Equal(t, "p{color:red}", resp.Action.Code.CSS)
	assert.Equal(t, "", resp.Action.Code.JS)
	assert.Equal(t, convo.GoalEditCode, resp.Context.Goal)
}

func TestEditingFailureAppendsTwoHistoryEntries(t *testing.T) {
	llm := &stubLLM{err: assert.AnError}
	agent := NewEditingAgent(llm, testAgentsConfig(), nil, nil)

	incoming := editContext()
	historyLen := len(incoming.History)

	resp := agent.Handle(context.Background(), Turn{
		Prompt:  "make the header bigger",
		Context: incoming,
		Code:    &convo.GeneratedCode{HTML: "<h1>x</h1>"},
	})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	assert.Nil(t, resp.UI)
	assert.Equal(t, convo.GoalEditCode, resp.Context.Goal)

	require.Len(t, resp.Context.History, historyLen+2)
	appended := resp.Context.History[historyLen:]
	assert.Equal(t, convo.SpeakerUser, appended[0].Speaker)
	assert.Equal(t, "make the header bigger", appended[0].Text)
	assert.Equal(t, convo.SpeakerAgent, appended[1].Speaker)
}

type countingAgent struct {
	name  string
	calls int
	resp  *convo.AgentResponse
}

func (a *countingAgent) Name() string { return a.name }

func (a *countingAgent) Handle(ctx context.Context, turn Turn) *convo.AgentResponse {
	a.calls++
	if a.resp != nil {
		return a.resp
	}
	return &convo.AgentResponse{ID: convo.NewResponseID(), Status: convo.StatusAwaitingInput, Context: turn.Context}
}

type panickingAgent struct{}

func (a *panickingAgent) Name() string { return "panicking" }

func (a *panickingAgent) Handle(ctx context.Context, turn Turn) *convo.AgentResponse {
	panic("boom")
}

func TestRouterMissingArtifactSkipsAgent(t *testing.T) {
	editing := &countingAgent{name: "editing"}
	router := NewRouter(&countingAgent{name: "onboarding"}, &countingAgent{name: "codegen"}, editing)

	c := editContext()
	resp := router.Route(context.Background(), Turn{Prompt: "tweak it", Context: c})

	assert.Equal(t, convo.StatusError, resp.Status)
	assert.Zero(t, editing.calls, "editing agent must not run without an artifact")
	assert.Same(t, c, resp.Context)
}

func TestRouterUnrecognizedGoalFallsBackToOnboarding(t *testing.T) {
	onboarding := &countingAgent{name: "onboarding"}
	codegen := &countingAgent{name: "codegen"}
	editing := &countingAgent{name: "editing"}
	router := NewRouter(onboarding, codegen, editing)

	c := convo.NewContext()
	c.Goal = convo.Goal("make_me_a_sandwich")

	router.Route(context.Background(), Turn{Prompt: "hi", Context: c})

	assert.Equal(t, 1, onboarding.calls)
	assert.Zero(t, codegen.calls)
	assert.Zero(t, editing.calls)
}

func TestRouterDispatchTable(t *testing.T) {
	tests := []struct {
		name string
		ctx  *convo.ConversationContext
		code *convo.GeneratedCode
		want string
	}{
		{"nil context", nil, nil, "onboarding"},
		{"onboard goal", convo.NewContext(), nil, "onboarding"},
		{"generate goal", &convo.ConversationContext{Goal: convo.GoalGeneratePage}, nil, "codegen"},
		{"edit goal with artifact", &convo.ConversationContext{Goal: convo.GoalEditCode}, &convo.GeneratedCode{HTML: "<p/>"}, "editing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			onboarding := &countingAgent{name: "onboarding"}
			codegen := &countingAgent{name: "codegen"}
			editing := &countingAgent{name: "editing"}
			router := NewRouter(onboarding, codegen, editing)

			router.Route(context.Background(), Turn{Context: tt.ctx, Code: tt.code})

			counts := map[string]int{
				"onboarding": onboarding.calls,
				"codegen":    codegen.calls,
				"editing":    editing.calls,
			}
			for name, calls := range counts {
				if name == tt.want {
					assert.Equal(t, 1, calls, "%s should have been invoked", name)
				} else {
					assert.Zero(t, calls, "%s should not have been invoked", name)
				}
			}
		})
	}
}

func TestRouterConvertsPanicToInternalError(t *testing.T) {
	router := NewRouter(&panickingAgent{}, &countingAgent{name: "codegen"}, &countingAgent{name: "editing"})

	c := convo.NewContext()
	resp := router.Route(context.Background(), Turn{Prompt: "hi", Context: c})

	require.NotNil(t, resp)
	assert.Equal(t, convo.StatusError, resp.Status)
	assert.NotEmpty(t, resp.ID)
}

func TestResponseIDsAreUniquePerTurn(t *testing.T) {
	llm := &stubLLM{err: assert.AnError}
	agent := NewOnboardingAgent(llm, testAgentsConfig(), nil, nil)

	c := midInterviewContext()
	first := agent.Handle(context.Background(), Turn{Prompt: "a", Context: c})
	second := agent.Handle(context.Background(), Turn{Prompt: "b", Context: c})

	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, second.ID)
	assert.NotEqual(t, first.ID, second.ID, "every response, including errors, gets a fresh id")
}

func scrapeMetrics(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestFailureCountersIncrement(t *testing.T) {
	m := observability.NewMetrics()

	// Generation failures count as LLM errors, one per agent here.
	onboarding := NewOnboardingAgent(&stubLLM{err: assert.AnError}, testAgentsConfig(), nil, m)
	onboarding.Handle(context.Background(), Turn{Prompt: "hi", Context: midInterviewContext()})

	editing := NewEditingAgent(&stubLLM{err: assert.AnError}, testAgentsConfig(), nil, m)
	editing.Handle(context.Background(), Turn{
		Prompt:  "bigger header",
		Context: editContext(),
		Code:    &convo.GeneratedCode{HTML: "<h1>x</h1>"},
	})

	// A reply with no JSON object counts as a parse failure.
	c := midInterviewContext()
	c.Goal = convo.GoalGeneratePage
	codegen := NewCodeGenerationAgent(&stubLLM{reply: "no code today"}, testFilter(t), testAgentsConfig(), nil, m)
	codegen.Handle(context.Background(), Turn{Context: c})

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "sitesmith_llm_errors_total 2")
	assert.Contains(t, body, "sitesmith_parse_failures_total 1")
}

func TestAgentsTolerateAbsentMetrics(t *testing.T) {
	agent := NewOnboardingAgent(&stubLLM{err: assert.AnError}, testAgentsConfig(), nil, nil)

	resp := agent.Handle(context.Background(), Turn{Prompt: "hi", Context: midInterviewContext()})

	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
}

func TestDecodeArtifactRejectsProse(t *testing.T) {
	_, err := decodeArtifact("here you go!")
	require.Error(t, err)
	assert.ErrorIs(t, err, convo.ErrMalformedModelOutput)
}

func TestDecodeArtifactMissingFields(t *testing.T) {
	_, err := decodeArtifact(`{"html":"<p/>"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, convo.ErrIncompleteArtifact)
}
