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
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kadirpekel/sitesmith/pkg/agents"
	"github.com/kadirpekel/sitesmith/pkg/config"
	"github.com/kadirpekel/sitesmith/pkg/observability"
	"github.com/kadirpekel/sitesmith/pkg/server"
)

// ServeCmd starts the HTTP turn server.
type ServeCmd struct {
	Port  int  `help:"Port to listen on (overrides config)." default:"0"`
	Watch bool `help:"Watch config file for changes."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
	}()

	cfg, loader, err := loadConfig(ctx, cli.Config)
	if err != nil {
		return err
	}
	if loader != nil {
		defer loader.Close()
	}

	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}

	if c.Watch && loader != nil {
		go func() {
			if err := loader.Watch(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Config watch error", "error", err)
			}
		}()
	}

	metrics := observability.NewMetrics()

	core, err := agents.NewCore(cfg, agents.WithCoreMetrics(metrics))
	if err != nil {
		return fmt.Errorf("failed to build agent core: %w", err)
	}
	defer core.Close()

	srv := server.New(core, cfg.Server, server.WithMetrics(metrics))

	fmt.Printf("\nsitesmith server ready\n")
	fmt.Printf("   Turn:     POST http://%s:%d/v1/turn\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("   Health:   http://%s:%d/health\n", cfg.Server.Host, cfg.Server.Port)
	if cfg.Server.MetricsEnabled() {
		fmt.Printf("   Metrics:  http://%s:%d/metrics\n", cfg.Server.Host, cfg.Server.Port)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	return srv.ListenAndServe(ctx)
}

// loadConfig loads configuration from the given path, falling back to
// defaults when no path is supplied.
func loadConfig(ctx context.Context, path string) (*config.Config, *config.Loader, error) {
	if path == "" {
		cfg := &config.Config{}
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("default configuration invalid: %w", err)
		}
		return cfg, nil, nil
	}

	_ = config.LoadDotEnvForConfig(path)

	cfg, loader, err := config.LoadFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
