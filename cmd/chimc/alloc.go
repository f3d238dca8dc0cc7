package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chim/internal/storage"
)

var allocCmd = &cobra.Command{
	Use:   "alloc [flags] [path]",
	Short: "Show storage decisions for a unit",
	Long:  "Decide stack, heap or pool placement for every variable the unit manifest declares.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAllocCmd,
}

func runAllocCmd(cmd *cobra.Command, args []string) error {
	unit, err := loadUnitArg(args)
	if err != nil {
		return err
	}
	if len(unit.Vars) == 0 {
		fmt.Fprintf(os.Stdout, "unit %s declares no variables\n", unit.Name)
		return nil
	}

	dec := storage.NewDecider(unit.Facts, buildEngine(unit), unit.Thresholds)
	for _, v := range unit.Vars {
		strategy := dec.Decide(v.Name, v.TypeName, v.Init, v.Context, v.Lifetime)
		fmt.Fprintf(os.Stdout, "var %s in %s: %s (%s, %d bytes, lifetime %d)\n",
			v.Name, v.Context, strategy, v.TypeName, dec.TypeSize(v.TypeName), v.Lifetime)
	}
	return nil
}
