// Copyright 2025 go-highway Authors
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

// Package config reads the settings of hwyemu from the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/ajroetker/hwyemu/emulate"
)

// Environment variables read by Load.
const (
	EnvLogLevel = "HWYEMU_LOG_LEVEL"
	EnvStrict   = "HWYEMU_STRICT"
	EnvVerify   = "HWYEMU_VERIFY"
	EnvJobs     = "HWYEMU_JOBS"
)

// Config holds the settings of the engine and the command line tool.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string

	// Strict makes unsupported intrinsics a fatal error.
	Strict bool

	// Verify checks every lowered block.
	Verify bool

	// Jobs is the number of case files processed concurrently.
	Jobs int
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		LogLevel: "warn",
		Verify:   true,
		Jobs:     4,
	}
}

// Load returns the default configuration overridden by the environment.
func Load() (Config, error) {
	env.Load()
	cfg := Default()
	cfg.LogLevel = strings.ToLower(env.Str(EnvLogLevel, cfg.LogLevel))
	if env.Has(EnvStrict) {
		cfg.Strict = env.Bool(EnvStrict)
	}
	if env.Has(EnvVerify) {
		cfg.Verify = env.Bool(EnvVerify)
	}
	cfg.Jobs = env.Int(EnvJobs, cfg.Jobs)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every field has a usable value.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Jobs < 1 {
		return fmt.Errorf("config: jobs must be at least 1, got %d", c.Jobs)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Logger returns a text logger writing to w at the configured level.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// EngineOptions returns the engine options matching the configuration.
func (c Config) EngineOptions(logger *slog.Logger) []emulate.Option {
	return []emulate.Option{
		emulate.WithLogger(logger),
		emulate.WithStrictUnsupported(c.Strict),
		emulate.WithVerify(c.Verify),
	}
}
