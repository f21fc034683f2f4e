package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vellum-lang/vellum/compile"
	"github.com/vellum-lang/vellum/value"
	"github.com/vellum-lang/vellum/vm"
)

func buildUnitFromFiles(paths []string) (*compile.Compilation, []*os.File, error) {
	var sources []compile.Source
	var files []*os.File
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			for _, o := range files {
				o.Close()
			}
			return nil, nil, err
		}
		files = append(files, f)
		sources = append(sources, compile.Source{Name: p, Reader: f})
	}
	return compile.Prepare(sources...), files, nil
}

func closeAll(files []*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// parseArg interprets one CLI argument as the small set of literal
// shapes the compile package's surface grammar understands: integers,
// floats, booleans, and (as a fallback) strings.
func parseArg(s string) value.Value {
	if s == "true" {
		return value.Bool(true)
	}
	if s == "false" {
		return value.Bool(false)
	}
	if n, err := strconv.ParseInt(s, 0, 64); err == nil {
		return value.Int(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Float(f)
	}
	return value.NewString(s)
}

func newRunCmd() *cobra.Command {
	var entry string
	var budget int64
	cmd := &cobra.Command{
		Use:   "run <file.vel...> [-- args...]",
		Short: "Compile and run a script's entry point to completion",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, paths := splitArgs(args)
			comp, fhs, err := buildUnitFromFiles(files)
			if err != nil {
				return err
			}
			defer closeAll(fhs)
			ctx, err := vm.NewContext()
			if err != nil {
				return err
			}
			u, err := comp.WithContext(ctx).Build()
			if err != nil {
				return err
			}
			var opts []vm.Option
			if budget > 0 {
				opts = append(opts, vm.WithBudget(budget))
			}
			callArgs := make([]value.Value, 0, len(paths))
			for _, p := range paths {
				callArgs = append(callArgs, parseArg(p))
			}
			res, err := vm.Call(u, ctx, entry, callArgs, opts...)
			if err != nil {
				return err
			}
			cmd.Println(res.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "main", "entry-point function to run")
	cmd.Flags().Int64Var(&budget, "budget", 0, "instruction budget (0 = unlimited)")
	return cmd
}

// splitArgs separates script file paths (everything up to "--", or all
// of args if "--" is absent) from the entry-point call arguments that
// follow it.
func splitArgs(args []string) (files, callArgs []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}
