// Command vellum is a thin, non-normative CLI front-end over the
// compile and vm packages: parse flags and arguments, build a Unit,
// and run or inspect it (see DESIGN.md's "cmd" section for the
// library choices behind this).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vellum",
		Short:         "Build and run vellum scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newRunCmd(),
		newCheckCmd(),
		newStubCmd("test", "run a script's unit tests"),
		newStubCmd("bench", "run a script's benchmarks"),
		newStubCmd("doc", "generate documentation for a script"),
		newStubCmd("fmt", "format a script's source"),
		newStubCmd("languageserver", "run a language server over a script"),
	)
	return root
}

func newStubCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("%s: not implemented in core", name)
		},
	}
}
