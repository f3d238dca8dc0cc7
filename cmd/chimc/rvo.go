package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chim/internal/ir"
	"chim/internal/rvo"
)

var rvoCmd = &cobra.Command{
	Use:   "rvo [flags] [path]",
	Short: "Show return value optimizations for a unit",
	Long:  "Rewrite temporary-returning functions to construct in the caller's slot and report the rewrite count.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRVOCmd,
}

func init() {
	rvoCmd.Flags().Bool("dump", false, "print the optimized module IR")
}

func runRVOCmd(cmd *cobra.Command, args []string) error {
	dump, err := cmd.Flags().GetBool("dump")
	if err != nil {
		return err
	}
	unit, err := loadUnitArg(args)
	if err != nil {
		return err
	}

	mod := ir.NewModule(unit.Name)
	for _, f := range unit.Functions {
		if len(f.Body) == 0 {
			continue
		}
		fn := ir.NewFunction(f.Name, ir.Void())
		fn.Body = append(fn.Body, f.Body...)
		mod.AddFunction(fn)
	}
	if len(mod.Functions) == 0 {
		fmt.Fprintf(os.Stdout, "unit %s declares no lowered functions\n", unit.Name)
		return nil
	}

	stats := rvo.OptimizeModule(mod)
	fmt.Fprintf(os.Stdout, "rvo: %d function(s) optimized, %d return(s) rewritten\n",
		stats.Functions, stats.Rewrites)
	if dump {
		return ir.DumpModule(os.Stdout, mod)
	}
	return nil
}
