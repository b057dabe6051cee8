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

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kadirpekel/sitesmith/pkg/agents"
	"github.com/kadirpekel/sitesmith/pkg/convo"
)

// ChatCmd runs an interactive conversation in the terminal. The generated
// page is written to the output directory whenever an artifact arrives.
type ChatCmd struct {
	Out string `help:"Directory to write the generated site into." default:"./site" type:"path"`
}

func (c *ChatCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	core, err := agents.NewCore(cfg)
	if err != nil {
		return fmt.Errorf("failed to build agent core: %w", err)
	}
	defer core.Close()

	reader := bufio.NewScanner(os.Stdin)
	reader.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var conversation *convo.ConversationContext
	var code *convo.GeneratedCode

	// Turn zero: deterministic greeting, no user prompt needed.
	resp := core.HandleTurn(ctx, "", conversation, code)
	conversation, code = c.consume(resp, conversation, code)

	for {
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		prompt := strings.TrimSpace(reader.Text())
		if prompt == "" {
			continue
		}
		if prompt == "/quit" || prompt == "/exit" {
			break
		}

		resp := core.HandleTurn(ctx, prompt, conversation, code)
		conversation, code = c.consume(resp, conversation, code)

		// A DELEGATE handoff means the next turn belongs to another agent,
		// not the user; run it immediately.
		for resp.Action != nil && resp.Action.Type == convo.ActionDelegate {
			resp = core.HandleTurn(ctx, "", conversation, code)
			conversation, code = c.consume(resp, conversation, code)
		}
	}

	return reader.Err()
}

// consume prints a response and folds it into the caller-held state.
func (c *ChatCmd) consume(resp *convo.AgentResponse, conversation *convo.ConversationContext, code *convo.GeneratedCode) (*convo.ConversationContext, *convo.GeneratedCode) {
	if resp.Speech != "" {
		fmt.Printf("\n%s\n\n", resp.Speech)
	}

	if resp.Context != nil {
		conversation = resp.Context
	}

	if resp.Action != nil && resp.Action.Type == convo.ActionGenerationComplete && resp.Action.Code != nil {
		code = resp.Action.Code
		if err := c.writeSite(code); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write site: %v\n", err)
		} else {
			fmt.Printf("Site written to %s\n\n", c.Out)
		}
		// From here on the conversation is about editing what was built.
		if conversation != nil && conversation.Goal == convo.GoalCompleted {
			conversation = conversation.Clone()
			conversation.Goal = convo.GoalEditCode
		}
	}

	return conversation, code
}

func (c *ChatCmd) writeSite(code *convo.GeneratedCode) error {
	if err := os.MkdirAll(c.Out, 0o755); err != nil {
		return err
	}
	files := map[string]string{
		"index.html": code.HTML,
		"styles.css": code.CSS,
		"script.js":  code.JS,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(c.Out, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
