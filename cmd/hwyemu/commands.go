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

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/hwyemu/codegen"
	"github.com/ajroetker/hwyemu/emulate"
	"github.com/ajroetker/hwyemu/hwy"
	"github.com/ajroetker/hwyemu/internal/casefile"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the supported intrinsics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := a.engine()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFAMILY\tRULE\tARGS\tISA")
			for _, name := range e.Names() {
				in := e.Lookup(name).Intrinsic
				sig := strings.Join(lo.Map(in.Signature(), func(k emulate.ArgKind, _ int) string {
					return k.String()
				}), "")
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, in, in.Rule(), sig, in.Feature())
			}
			return w.Flush()
		},
	}
}

func newLowerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lower FILE.txtar",
		Short: "Print the IR of a lowered case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := casefile.ParseFile(args[0])
			if err != nil {
				return err
			}
			l, err := c.Lower(a.engine(), codegen.WithLogger(a.logger))
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), l.Func.String())
			return err
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "run FILE.txtar...",
		Short: "Lower, run and check cases",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := a.engine()
			results := make([]error, len(args))
			var g errgroup.Group
			g.SetLimit(a.cfg.Jobs)
			for i, path := range args {
				g.Go(func() error {
					results[i] = runCase(a, e, path, check)
					return nil
				})
			}
			_ = g.Wait()

			out := cmd.OutOrStdout()
			failed := 0
			for i, path := range args {
				if results[i] != nil {
					failed++
					fmt.Fprintf(out, "FAIL %s\n%v\n", path, results[i])
				} else {
					fmt.Fprintf(out, "ok   %s\n", path)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d cases failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also compare against the hwy reference model")
	return cmd
}

func runCase(a *app, e *emulate.Engine, path string, check bool) error {
	c, err := casefile.ParseFile(path)
	if err != nil {
		return err
	}
	l, err := c.Lower(e, codegen.WithLogger(a.logger))
	if err != nil {
		return err
	}
	got, err := l.Run()
	if err != nil {
		return err
	}
	errs := []error{c.Check(got), l.CheckIR()}
	if check {
		want, err := c.Reference(e)
		if err != nil {
			errs = append(errs, err)
		} else if err := casefile.Compare(want, got); err != nil {
			errs = append(errs, fmt.Errorf("reference: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the host SIMD level and the intrinsic table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := a.engine()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "host:       %s (%d-byte vectors)\n", hwy.CurrentName(), hwy.CurrentWidth())
			fmt.Fprintf(out, "features:   %s\n", strings.Join(hwy.Features(), " "))

			byRule := lo.CountValuesBy(e.Names(), func(name string) emulate.RuleKind {
				return e.Lookup(name).Intrinsic.Rule()
			})
			fmt.Fprintf(out, "intrinsics: %d\n", len(e.Names()))
			for _, k := range []emulate.RuleKind{emulate.RuleLaneWise, emulate.RuleCrossLane, emulate.RuleMemory, emulate.RuleArithmetic} {
				fmt.Fprintf(out, "  %-10s %d\n", k, byRule[k])
			}

			native := lo.Filter(e.Names(), func(name string, _ int) bool {
				return hwy.HasFeature(e.Lookup(name).Intrinsic.Feature())
			})
			fmt.Fprintf(out, "native on host: %d\n", len(native))
			return nil
		},
	}
}
