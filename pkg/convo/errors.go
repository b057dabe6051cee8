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

import "errors"

// Failure taxonomy. Every agent-level failure is caught at the agent
// boundary and converted into a valid AgentResponse; these sentinels let
// callers and tests classify what went wrong with errors.Is.
var (
	// ErrMalformedModelOutput means a generation reply could not be parsed
	// as JSON.
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrIncompleteArtifact means a parsed reply was missing required code
	// fields.
	ErrIncompleteArtifact = errors.New("incomplete artifact")

	// ErrMissingArtifact means an edit was requested with no existing
	// artifact. This is a router-level precondition violation.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrServiceUnavailable means a supporting dataset or service could not
	// be reached. The baseline filter degrades on it rather than failing.
	ErrServiceUnavailable = errors.New("service unavailable")
)
