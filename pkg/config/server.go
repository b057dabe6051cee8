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

package config

import "fmt"

// ServerConfig configures the HTTP shim.
type ServerConfig struct {
	// Host to bind to.
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,description=Address to bind,default=0.0.0.0"`

	// Port to listen on.
	Port int `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,description=Port to listen on,default=8080"`

	// Metrics exposes prometheus metrics on /metrics when true.
	Metrics *bool `yaml:"metrics,omitempty" json:"metrics,omitempty" jsonschema:"title=Metrics,description=Expose prometheus metrics on /metrics,default=true"`

	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `yaml:"max_body_bytes,omitempty" json:"max_body_bytes,omitempty" jsonschema:"title=Max Body Bytes,description=Maximum request body size in bytes,default=1048576"`
}

// SetDefaults applies defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.Metrics == nil {
		enabled := true
		c.Metrics = &enabled
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// MetricsEnabled reports whether /metrics should be served.
func (c *ServerConfig) MetricsEnabled() bool {
	return c.Metrics == nil || *c.Metrics
}
