package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chim/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new analysis unit",
	Long: `Initialize a new analysis unit by creating a unit manifest (chim.toml)
with a starter struct, variable and function. If [path|name] is omitted,
initializes the current directory. If a non-existing name is provided, a
directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Unit names are identifiers; directory names often are not.
	name := strings.TrimSpace(filepath.Base(target))
	if !project.IsValidUnitName(name) {
		name = "unit"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("unit already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized chim unit in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", project.ManifestName)
	return nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`[unit]
name = %q

[thresholds]
stack = 4096
pool = 4096
pool_lifetime = 1000

[regalloc]
physical = 8

[[struct]]
name = "Point"
fields = [ { name = "x", type = "float" }, { name = "y", type = "float" } ]

[[var]]
name = "p"
type = "Point"
context = "main"
lifetime = 50

[[fn]]
name = "origin"
insts = [
  { op = "alloca", dest = ".tmp0", type = "struct.Point" },
  { op = "ret", value = ".tmp0" },
]
`, name)
}
