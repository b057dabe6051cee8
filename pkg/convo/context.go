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

// Package convo defines the conversation contract shared by every agent:
// the context baton threaded through turns, the per-turn response shape,
// and the tagged ui/action unions the presentation layer consumes.
//
// The core holds no state across calls. A ConversationContext is created
// empty on first contact, mutated by exactly one agent per turn, and handed
// back to the caller for external persistence.
package convo

// Speaker identifies who produced a history entry.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Goal is the single source of truth for routing a turn.
type Goal string

const (
	GoalNone         Goal = ""
	GoalOnboardUser  Goal = "onboard_user"
	GoalGeneratePage Goal = "generate_landing_page"
	GoalEditCode     Goal = "edit_code"
	GoalCompleted    Goal = "completed"
)

// OnboardingState tracks interview progress while Goal is onboard_user.
type OnboardingState string

const (
	StateGreeting   OnboardingState = "GREETING"
	StateCoreInfo   OnboardingState = "CORE_INFO"
	StateDeepDive   OnboardingState = "DEEP_DIVE"
	StateBranding   OnboardingState = "BRANDING"
	StateFinalizing OnboardingState = "FINALIZING"
)

// KnownOnboardingState reports whether s is one of the interview states.
func KnownOnboardingState(s OnboardingState) bool {
	switch s {
	case StateGreeting, StateCoreInfo, StateDeepDive, StateBranding, StateFinalizing:
		return true
	}
	return false
}

// NextOnboardingState returns the state that follows s in interview order.
// FINALIZING is terminal and maps to itself.
func NextOnboardingState(s OnboardingState) OnboardingState {
	switch s {
	case StateGreeting:
		return StateCoreInfo
	case StateCoreInfo:
		return StateDeepDive
	case StateDeepDive:
		return StateBranding
	case StateBranding:
		return StateFinalizing
	default:
		return StateFinalizing
	}
}

// Message is a single history entry.
type Message struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// ConversationContext is the baton passed across every turn.
//
// History is append-only and chronological; it is never reordered or pruned
// here. CollectedInfo is merged via shallow overwrite: later writes of the
// same key replace earlier ones.
type ConversationContext struct {
	History         []Message       `json:"history"`
	CollectedInfo   map[string]any  `json:"collected_info"`
	Goal            Goal            `json:"goal"`
	OnboardingState OnboardingState `json:"onboarding_state,omitempty"`
}

// NewContext returns an empty context positioned at the start of onboarding.
func NewContext() *ConversationContext {
	return &ConversationContext{
		History:         []Message{},
		CollectedInfo:   map[string]any{},
		Goal:            GoalOnboardUser,
		OnboardingState: StateGreeting,
	}
}

// Clone returns a deep copy. Agents mutate a clone so a failed turn can hand
// the caller's context back byte-for-byte untouched.
func (c *ConversationContext) Clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := &ConversationContext{
		History:         make([]Message, len(c.History)),
		CollectedInfo:   make(map[string]any, len(c.CollectedInfo)),
		Goal:            c.Goal,
		OnboardingState: c.OnboardingState,
	}
	copy(out.History, c.History)
	for k, v := range c.CollectedInfo {
		out.CollectedInfo[k] = v
	}
	return out
}

// Append adds a history entry.
func (c *ConversationContext) Append(speaker Speaker, text string) {
	c.History = append(c.History, Message{Speaker: speaker, Text: text})
}

// Merge applies updates to CollectedInfo with shallow overwrite semantics.
func (c *ConversationContext) Merge(updates map[string]any) {
	if len(updates) == 0 {
		return
	}
	if c.CollectedInfo == nil {
		c.CollectedInfo = make(map[string]any, len(updates))
	}
	for k, v := range updates {
		c.CollectedInfo[k] = v
	}
}

// Recent returns up to n of the most recent history entries.
func (c *ConversationContext) Recent(n int) []Message {
	if n <= 0 || len(c.History) <= n {
		return c.History
	}
	return c.History[len(c.History)-n:]
}

// GeneratedCode is the website artifact. It is treated as an opaque unit:
// any agent that modifies it returns all three fields, even if only one
// changed, so a partial reply can never corrupt the artifact.
type GeneratedCode struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}
