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

// Phase is the combined routing state derived from Goal at the router
// boundary. Deriving it in one place gives "unrecognized goal" a single
// documented fallback instead of an implicit default-case fallthrough.
type Phase int

const (
	// PhaseOnboarding routes to the interview agent. It is the fallback for
	// a nil context, an empty goal, and any unrecognized goal.
	PhaseOnboarding Phase = iota

	// PhaseGeneration routes to the code generation agent.
	PhaseGeneration

	// PhaseEditing routes to the editing agent and requires an artifact.
	PhaseEditing
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseGeneration:
		return "generation"
	case PhaseEditing:
		return "editing"
	default:
		return "onboarding"
	}
}

// PhaseFor resolves a context to exactly one phase. A nil context is turn
// zero and resolves to onboarding. Unrecognized goals fall back to
// onboarding, never fail closed.
func PhaseFor(c *ConversationContext) Phase {
	if c == nil {
		return PhaseOnboarding
	}
	switch c.Goal {
	case GoalEditCode:
		return PhaseEditing
	case GoalGeneratePage:
		return PhaseGeneration
	default:
		return PhaseOnboarding
	}
}
