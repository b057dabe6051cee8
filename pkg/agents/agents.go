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

// Package agents implements the conversation agents and the router that
// dispatches each turn to exactly one of them.
//
// Every agent converts its own failures into a valid AgentResponse; no
// generation or parse error escapes an agent boundary. The router's
// catch-all is a safety net, not the primary mechanism.
package agents

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kadirpekel/sitesmith/pkg/convo"
	"github.com/kadirpekel/sitesmith/pkg/extract"
	"github.com/kadirpekel/sitesmith/pkg/utils"
)

// Turn is one inbound request: a user prompt plus whatever the caller
// persisted from the previous turn. Context is nil on first contact. Code
// is the current artifact, if one exists.
type Turn struct {
	Prompt  string
	Context *convo.ConversationContext
	Code    *convo.GeneratedCode
}

// Agent handles one turn. Implementations never return an error; failures
// are folded into the response so the conversation can always continue.
type Agent interface {
	Name() string
	Handle(ctx context.Context, turn Turn) *convo.AgentResponse
}

// artifactReply is the model's code payload. Pointer fields distinguish a
// present-but-empty string from a missing key: empty is a valid value,
// missing is an incomplete artifact.
type artifactReply struct {
	HTML *string `json:"html"`
	CSS  *string `json:"css"`
	JS   *string `json:"js"`
}

// decodeArtifact isolates and validates a {html, css, js} reply.
func decodeArtifact(raw string) (*convo.GeneratedCode, error) {
	var reply artifactReply
	if err := extract.Decode(raw, &reply); err != nil {
		return nil, err
	}
	var missing []string
	if reply.HTML == nil {
		missing = append(missing, "html")
	}
	if reply.CSS == nil {
		missing = append(missing, "css")
	}
	if reply.JS == nil {
		missing = append(missing, "js")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing fields %v", convo.ErrIncompleteArtifact, missing)
	}
	return &convo.GeneratedCode{HTML: *reply.HTML, CSS: *reply.CSS, JS: *reply.JS}, nil
}

// warnPromptSize logs when a prompt's estimated token count crosses the
// configured threshold. History is unbounded by design; this keeps the
// growth visible instead of silently inflating every request.
func warnPromptSize(counter *utils.TokenCounter, threshold int, agent, prompt string) {
	if threshold <= 0 {
		return
	}
	var tokens int
	if counter != nil {
		tokens = counter.Count(prompt)
	} else {
		tokens = utils.EstimateTokens(prompt)
	}
	if tokens > threshold {
		slog.Warn("Prompt exceeds token threshold",
			"agent", agent, "tokens", tokens, "threshold", threshold)
	}
}
