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

package server

import (
	"sync"

	"github.com/kadirpekel/sitesmith/pkg/convo"
)

// conversation is what the shim persists between turns on behalf of a
// client that does not echo the context back itself.
type conversation struct {
	Context *convo.ConversationContext
	Code    *convo.GeneratedCode
}

// store is the process-held conversation map. The agent core is stateless;
// this is purely a convenience for clients, keyed by conversation id.
type store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

func newStore() *store {
	return &store{conversations: make(map[string]*conversation)}
}

func (s *store) get(id string) (*conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	return c, ok
}

func (s *store) put(id string, c *conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[id] = c
}

func (s *store) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
}
