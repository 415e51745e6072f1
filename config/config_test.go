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

package config

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{EnvLogLevel, EnvStrict, EnvVerify, EnvJobs} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvStrict, "true")
	t.Setenv(EnvVerify, "false")
	t.Setenv(EnvJobs, "9")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	want := Config{LogLevel: "debug", Strict: true, Verify: false, Jobs: 9}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "chatty")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "chatty") {
		t.Errorf("Load: got %v, want a log level error", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", Default(), false},
		{"error level", Config{LogLevel: "error", Jobs: 1}, false},
		{"no jobs", Config{LogLevel: "info", Jobs: 0}, true},
		{"empty level", Config{Jobs: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", Jobs: 1}.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	if got := buf.String(); strings.Contains(got, "hidden") || !strings.Contains(got, "msg=shown k=1") {
		t.Errorf("log output = %q", got)
	}

	level, err := Config{LogLevel: "debug"}.Level()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v", level, err)
	}
}

func TestEngineOptions(t *testing.T) {
	opts := Config{LogLevel: "warn", Strict: true, Verify: true, Jobs: 1}.EngineOptions(slog.Default())
	if len(opts) != 3 {
		t.Errorf("got %d engine options, want 3", len(opts))
	}
}
