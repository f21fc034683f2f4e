package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vellum-lang/vellum/compile"
	"github.com/vellum-lang/vellum/vm"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.vel...>",
		Short: "Compile a script and report errors without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, files, err := buildUnitFromFiles(args)
			if err != nil {
				return err
			}
			defer closeAll(files)
			ctx, err := vm.NewContext()
			if err != nil {
				return err
			}
			if _, err := comp.WithContext(ctx).Build(); err != nil {
				if diags, ok := err.(compile.Diagnostics); ok {
					diags.WriteTo(cmd.ErrOrStderr())
					return fmt.Errorf("%d error(s)", len(diags))
				}
				return err
			}
			cmd.Println("ok")
			return nil
		},
	}
	return cmd
}
