package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chim/internal/layout"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [flags] [path]",
	Short: "Show struct layouts for a unit",
	Long:  "Compute optimized layouts for every struct the unit manifest declares.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLayoutCmd,
}

func runLayoutCmd(cmd *cobra.Command, args []string) error {
	unit, err := loadUnitArg(args)
	if err != nil {
		return err
	}
	if len(unit.Structs) == 0 {
		fmt.Fprintf(os.Stdout, "unit %s declares no structs\n", unit.Name)
		return nil
	}

	eng := layout.New(unit.Target)
	for _, s := range unit.Structs {
		if s.ValueType {
			eng.MarkValueType(s.Name)
		}
	}
	// Savings are measured before SIMD widening changes the size.
	savings := make(map[string]int, len(unit.Structs))
	for _, s := range unit.Structs {
		eng.AnalyzeStruct(s.Name, s.Fields)
		savings[s.Name] = eng.CalculateSavings(s.Name, s.Fields)
		if s.ValueType {
			eng.ApplySIMDAlignment(s.Name)
		}
	}

	for _, s := range unit.Structs {
		report, ok := eng.Report(s.Name)
		if !ok {
			continue
		}
		fmt.Fprintln(os.Stdout, report)
		if savings[s.Name] > 0 {
			fmt.Fprintf(os.Stdout, "  savings: %d bytes\n", savings[s.Name])
		}
		if eng.Recursive(s.Name) {
			fmt.Fprintln(os.Stdout, "  recursive: yes")
		}
	}
	return nil
}
