package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/sitesmith/pkg/agents"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/convo"
)

// stubModel serves the ollama chat API shape with a canned reply, so the
// whole stack from HTTP shim down to provider runs against a local server.
func stubModel(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "stub",
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testServer(t *testing.T, modelReply string) *Server {
	t.Helper()
	model := stubModel(t, modelReply)

	cfg := &config.Config{
		LLMs: map[string]*config.LLMConfig{
			"default": {Provider: config.LLMProviderOllama, Host: model.URL},
		},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	core, err := agents.NewCore(cfg)
	if err != nil {
		t.Fatalf("NewCore() error = %v", err)
	}
	t.Cleanup(func() { core.Close() })

	return New(core, cfg.Server)
}

func postTurn(t *testing.T, handler http.Handler, body any) (*httptest.ResponseRecorder, *TurnResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp TurnResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, &resp
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "{}")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTurnZeroGreets(t *testing.T) {
	srv := testServer(t, "{}")
	handler := srv.routes()

	rec, resp := postTurn(t, handler, TurnRequest{ConversationID: "c1", Prompt: "hi"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c1", resp.ConversationID)
	assert.Equal(t, convo.StatusAwaitingInput, resp.Status)
	require.NotNil(t, resp.Context)
	assert.Equal(t, convo.StateGreeting, resp.Context.OnboardingState)
	assert.NotEmpty(t, resp.ID)
}

func TestTurnPersistsConversationServerSide(t *testing.T) {
	decision := `{"speech":"And what do you sell?","updated_data":{"business_name":"Acme"},"next_state":"CORE_INFO"}`
	srv := testServer(t, decision)
	handler := srv.routes()

	_, first := postTurn(t, handler, TurnRequest{ConversationID: "c1", Prompt: "hi"})
	require.NotNil(t, first.Context)

	// Second request omits the context; the server must fall back to its
	// held copy rather than restarting the interview.
	_, second := postTurn(t, handler, TurnRequest{ConversationID: "c1", Prompt: "Acme Anvils"})

	require.NotNil(t, second.Context)
	assert.Equal(t, convo.StateCoreInfo, second.Context.OnboardingState)
	assert.Equal(t, "Acme", second.Context.CollectedInfo["business_name"])
}

func TestTurnRequestContextWins(t *testing.T) {
	artifact := `{"html":"<p>hi</p>","css":"","js":""}`
	srv := testServer(t, artifact)
	handler := srv.routes()

	c := convo.NewContext()
	c.Goal = convo.GoalGeneratePage
	c.Merge(map[string]any{"business_name": "Acme"})

	_, resp := postTurn(t, handler, TurnRequest{ConversationID: "c2", Prompt: "", Context: c})

	assert.Equal(t, convo.StatusComplete, resp.Status)
	require.NotNil(t, resp.Action)
	require.NotNil(t, resp.Action.Code)
	assert.Equal(t, "<p>hi</p>", resp.Action.Code.HTML)
	assert.Equal(t, convo.GoalCompleted, resp.Context.Goal)
}

func TestTurnRequiresConversationID(t *testing.T) {
	srv := testServer(t, "{}")

	rec, _ := postTurn(t, srv.routes(), TurnRequest{Prompt: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTurnRejectsInvalidBody(t *testing.T) {
	srv := testServer(t, "{}")

	req := httptest.NewRequest(http.MethodPost, "/v1/turn", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTurnRejectsOversizedBody(t *testing.T) {
	srv := testServer(t, "{}")
	srv.cfg.MaxBodyBytes = 64

	big := TurnRequest{ConversationID: "c1", Prompt: string(bytes.Repeat([]byte("a"), 256))}
	rec, _ := postTurn(t, srv.routes(), big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDeleteConversation(t *testing.T) {
	srv := testServer(t, "{}")
	handler := srv.routes()

	_, first := postTurn(t, handler, TurnRequest{ConversationID: "c1", Prompt: "hi"})
	require.NotNil(t, first.Context)

	req := httptest.NewRequest(http.MethodDelete, "/v1/conversations/c1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// With the held state gone, the next turn is turn zero again.
	_, fresh := postTurn(t, handler, TurnRequest{ConversationID: "c1", Prompt: "hi"})
	require.NotNil(t, fresh.Context)
	assert.Empty(t, fresh.Context.CollectedInfo)
	assert.Equal(t, convo.StateGreeting, fresh.Context.OnboardingState)
}
