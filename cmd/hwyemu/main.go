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

// Command hwyemu lowers x86 intrinsic calls described by txtar case files
// and runs them on the IR interpreter.
//
// Usage:
//
//	hwyemu list                          # supported intrinsics
//	hwyemu lower testdata/movemask.txtar # print the lowered IR
//	hwyemu run --check testdata/*.txtar  # lower, run and check every case
//	hwyemu info                          # host SIMD level
//
// Settings are read from HWYEMU_LOG_LEVEL, HWYEMU_STRICT, HWYEMU_VERIFY and
// HWYEMU_JOBS; the matching flags override them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/hwyemu/config"
	"github.com/ajroetker/hwyemu/emulate"
)

// app carries the configuration shared by all subcommands.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func (a *app) engine() *emulate.Engine {
	return emulate.NewEngine(a.cfg.EngineOptions(a.logger)...)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "hwyemu",
		Short:         "Lower x86 vector intrinsics to scalar IR",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg, err := config.Load()
	if err != nil {
		// Report the bad variable when a command runs.
		cfg = config.Default()
		root.PersistentPreRunE = func(*cobra.Command, []string) error { return err }
	} else {
		root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.logger = a.cfg.Logger(cmd.ErrOrStderr())
			return nil
		}
	}
	a.cfg = cfg

	addConfigFlags(root.PersistentFlags(), &a.cfg)

	root.AddCommand(
		newListCmd(a),
		newLowerCmd(a),
		newRunCmd(a),
		newInfoCmd(a),
	)
	return root
}

// addConfigFlags binds cfg to flags, using the loaded values as defaults.
func addConfigFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "treat unsupported intrinsics as fatal errors")
	flags.BoolVar(&cfg.Verify, "verify", cfg.Verify, "verify every lowered block")
	flags.IntVarP(&cfg.Jobs, "jobs", "j", cfg.Jobs, "number of case files processed concurrently")
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "hwyemu: %v\n", err)
		os.Exit(1)
	}
}
