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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kadirpekel/sitesmith/pkg/convo"
)

const onboardingSystemPrompt = `You are a friendly onboarding interviewer collecting a business brief for a landing page.

The interview moves through these states in order: GREETING (get the business name), CORE_INFO (description, target audience, key features), DEEP_DIVE (story, values, differentiators), BRANDING (style preference, brand colors), FINALIZING (done).

Given the current state, the data collected so far, and the recent conversation, decide whether to:
(a) ask a follow-up question in the same state,
(b) advance to the next state with a new question, or
(c) jump directly to FINALIZING if the user explicitly signals they are done answering questions.

Reply with ONLY a JSON object:
{
  "speech": "what to say to the user",
  "ui": {"type": "TEXT_INPUT|TEXT_AREA_INPUT|BUTTON_GROUP|MULTI_SELECT|COLOR_PICKER", "props": {...}},
  "updated_data": {"field_name": "value extracted from the user's last answer"},
  "next_state": "GREETING|CORE_INFO|DEEP_DIVE|BRANDING|FINALIZING"
}

Extract every piece of information the user's answer contains into updated_data using snake_case field names (business_name, business_description, target_audience, key_features, business_story, style_preference, brand_colors, contact_info). Ask one question at a time.`

const codegenSystemPrompt = `You are an expert front-end developer. Produce a complete, single-page landing page from the business brief.

Requirements:
- Vanilla HTML, CSS, and JavaScript only. No frameworks, no build steps, no external dependencies.
- Responsive layout that works on mobile and desktop.
- Semantic HTML with accessible labels.

Reply with ONLY a JSON object: {"html": "...", "css": "...", "js": "..."}. All three fields are required; use an empty string for a field the page does not need.`

const editingSystemPrompt = `You are an expert front-end developer applying a requested change to an existing page.

Make surgical, minimal changes: touch only what the instruction requires and leave everything else byte-for-byte intact.

Reply with ONLY a JSON object: {"html": "...", "css": "...", "js": "..."}. Always return the COMPLETE code for all three fields, including the ones you did not change. Never truncate or summarize unedited code.`

// buildOnboardingPrompt assembles the per-turn interview prompt.
func buildOnboardingPrompt(c *convo.ConversationContext, userPrompt string, historyWindow int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Current interview state: %s\n\n", c.OnboardingState)

	collected, _ := json.Marshal(c.CollectedInfo)
	fmt.Fprintf(&b, "Data collected so far:\n%s\n\n", collected)

	b.WriteString("Recent conversation:\n")
	for _, msg := range c.Recent(historyWindow) {
		fmt.Fprintf(&b, "%s: %s\n", msg.Speaker, msg.Text)
	}

	fmt.Fprintf(&b, "\nThe user just said:\n%s\n", userPrompt)

	return b.String()
}

// buildCodegenPrompt assembles the one-shot generation prompt from the
// brief and the permitted CSS property list.
func buildCodegenPrompt(c *convo.ConversationContext, permittedCSS []string) string {
	var b strings.Builder

	brief, _ := json.MarshalIndent(c.CollectedInfo, "", "  ")
	fmt.Fprintf(&b, "Business brief:\n%s\n", brief)

	if len(permittedCSS) > 0 {
		fmt.Fprintf(&b, "\nUse ONLY these CSS properties (baseline-safe across browsers):\n%s\n",
			strings.Join(permittedCSS, ", "))
	}

	return b.String()
}

// buildEditingPrompt assembles the patch prompt around the current artifact.
func buildEditingPrompt(code *convo.GeneratedCode, instruction string) string {
	var b strings.Builder

	b.WriteString("Current page code:\n\n")
	fmt.Fprintf(&b, "HTML:\n%s\n\n", code.HTML)
	fmt.Fprintf(&b, "CSS:\n%s\n\n", code.CSS)
	fmt.Fprintf(&b, "JavaScript:\n%s\n\n", code.JS)
	fmt.Fprintf(&b, "Requested change:\n%s\n", instruction)

	return b.String()
}
