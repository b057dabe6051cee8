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

// Package provider abstracts where configuration bytes come from.
package provider

import "context"

// Type identifies a provider implementation.
type Type string

const (
	// TypeFile reads configuration from a local file.
	TypeFile Type = "file"
)

// Provider loads raw configuration bytes and optionally watches them for
// changes.
type Provider interface {
	// Type returns the provider type.
	Type() Type

	// Load reads the raw configuration bytes.
	Load(ctx context.Context) ([]byte, error)

	// Watch returns a channel that receives a value when the configuration
	// changes, or nil if the provider does not support watching.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases provider resources.
	Close() error
}
