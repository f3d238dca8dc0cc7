package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"tlog.app/go/tlog"

	"chim/internal/driver"
)

var regallocCmd = &cobra.Command{
	Use:   "regalloc [flags] [path]",
	Short: "Show register assignments for a unit",
	Long: `Allocate registers for every function the unit manifest declares.
Spilled registers are reported, not fatal; use analyze for the strict
pipeline.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRegallocCmd,
}

func runRegallocCmd(cmd *cobra.Command, args []string) error {
	unit, err := loadUnitArg(args)
	if err != nil {
		return err
	}
	if len(unit.Functions) == 0 {
		fmt.Fprintf(os.Stdout, "unit %s declares no functions\n", unit.Name)
		return nil
	}

	ctx := tlog.ContextWithSpan(cmd.Context(), tlog.Root())
	rep, err := driver.Analyze(ctx, unit, driver.Options{AllowSpills: true})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	driver.WriteText(os.Stdout, &driver.Report{Unit: rep.Unit, Functions: rep.Functions})
	return nil
}
