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

// Package baseline constrains generated CSS to widely-available web
// platform features.
package baseline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kadirpekel/sitesmith/pkg/config"
)

// statusHigh marks features available across all major engines long enough
// to be safe in generated output.
const statusHigh = "high"

// feature is one entry in the dataset file.
type feature struct {
	Baseline      string   `json:"baseline"`
	CSSProperties []string `json:"css_properties"`
}

// Filter exposes the set of CSS properties that generated code may use.
// The dataset is loaded once, on first use; concurrent first calls share a
// single load. A missing or unreadable dataset degrades to an empty set so
// generation proceeds without the constraint rather than failing turns.
type Filter struct {
	path  string
	group singleflight.Group

	mu     sync.RWMutex
	loaded bool
	props  map[string]struct{}
}

// NewFilter creates a filter over the configured dataset. No I/O happens
// until the first accessor call.
func NewFilter(cfg *config.BaselineConfig) *Filter {
	return &Filter{path: cfg.Dataset}
}

// Properties returns the sorted permitted CSS property names. An empty
// slice means the constraint is non-binding.
func (f *Filter) Properties(ctx context.Context) []string {
	props := f.snapshot(ctx)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Allows reports whether a CSS property is in the permitted set. When the
// set is empty the constraint is non-binding and everything is allowed.
func (f *Filter) Allows(property string) bool {
	props := f.snapshot(context.Background())
	if len(props) == 0 {
		return true
	}
	_, ok := props[property]
	return ok
}

func (f *Filter) snapshot(ctx context.Context) map[string]struct{} {
	f.mu.RLock()
	if f.loaded {
		props := f.props
		f.mu.RUnlock()
		return props
	}
	f.mu.RUnlock()

	// Collapse concurrent first loads into one read of the dataset. A
	// canceled caller gets the non-binding set without waiting; the load
	// itself still completes and warms the cache for later turns.
	ch := f.group.DoChan(f.path, func() (any, error) {
		f.load()
		return nil, nil
	})
	select {
	case <-ch:
	case <-ctx.Done():
		return nil
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.props
}

func (f *Filter) load() {
	props := make(map[string]struct{})

	data, err := os.ReadFile(f.path)
	if err != nil {
		slog.Warn("Baseline dataset unavailable, CSS constraint disabled", "path", f.path, "error", err)
	} else {
		var features map[string]feature
		if err := json.Unmarshal(data, &features); err != nil {
			slog.Warn("Baseline dataset malformed, CSS constraint disabled", "path", f.path, "error", err)
		} else {
			for _, feat := range features {
				if feat.Baseline != statusHigh {
					continue
				}
				for _, prop := range feat.CSSProperties {
					props[prop] = struct{}{}
				}
			}
			slog.Debug("Baseline dataset loaded", "path", f.path, "properties", len(props))
		}
	}

	f.mu.Lock()
	f.props = props
	f.loaded = true
	f.mu.Unlock()
}
