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

package convo

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Status is the per-turn state machine shared by all agents.
//
// PROCESSING is transient: it appears only as the caller's synthetic
// placeholder or as the onboarding finalize-handoff response. AWAITING_INPUT
// means the next call should carry a user prompt. COMPLETE means an artifact
// is ready. ERROR is terminal for the turn but never for the conversation.
type Status string

const (
	StatusAwaitingInput Status = "AWAITING_INPUT"
	StatusProcessing    Status = "PROCESSING"
	StatusComplete      Status = "COMPLETE"
	StatusError         Status = "ERROR"
)

// ActionType discriminates the action union.
type ActionType string

const (
	ActionRequestUserInput   ActionType = "REQUEST_USER_INPUT"
	ActionDelegate           ActionType = "DELEGATE"
	ActionGenerationComplete ActionType = "GENERATION_COMPLETE"
)

// KnownActionType reports whether t is a member of the closed union.
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionRequestUserInput, ActionDelegate, ActionGenerationComplete:
		return true
	}
	return false
}

// Action instructs the orchestrating layer what to do after this turn.
// Goal carries the DELEGATE target; Code carries the GENERATION_COMPLETE
// artifact.
type Action struct {
	Type ActionType     `json:"type"`
	Goal Goal           `json:"goal,omitempty"`
	Code *GeneratedCode `json:"code,omitempty"`
}

// UnmarshalJSON enforces the closed union on decode.
func (a *Action) UnmarshalJSON(data []byte) error {
	type alias Action
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !KnownActionType(raw.Type) {
		return fmt.Errorf("unknown action tag %q", raw.Type)
	}
	*a = Action(raw)
	return nil
}

// AgentResponse is the unit of output for every turn.
//
// ID is unique per response, including error responses, so the presentation
// layer can key UI replacement on it and never silently reuse stale state.
type AgentResponse struct {
	ID      string               `json:"id"`
	Status  Status               `json:"status"`
	Speech  string               `json:"speech,omitempty"`
	UI      *UIElement           `json:"ui,omitempty"`
	Action  *Action              `json:"action,omitempty"`
	Context *ConversationContext `json:"context"`
}

// NewResponseID mints the per-turn response identifier.
func NewResponseID() string {
	return uuid.NewString()
}
