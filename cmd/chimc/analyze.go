package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"tlog.app/go/tlog"

	"chim/internal/driver"
	"chim/internal/project"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] [path]",
	Short: "Run the full analysis pipeline",
	Long: `Analyze a unit manifest, or every *.toml unit under a directory.
The pipeline runs struct layout, storage decisions, return value
optimization and register allocation, and prints a report per unit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
	analyzeCmd.Flags().Int("jobs", 0, "units analyzed in parallel (0 = GOMAXPROCS)")
	analyzeCmd.Flags().Bool("cache", false, "reuse cached reports for unchanged manifests")
	analyzeCmd.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/chimc)")
	analyzeCmd.Flags().Bool("allow-spills", false, "report spilled registers instead of failing")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return err
	}
	allowSpills, err := cmd.Flags().GetBool("allow-spills")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	uiModeValue, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	arg := "."
	if len(args) > 0 {
		arg = args[0]
	}
	st, err := os.Stat(arg)
	if err != nil {
		return err
	}

	opts := driver.Options{AllowSpills: allowSpills, Jobs: jobs}
	if useCache {
		cache, err := openReportCache(cacheDir)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		opts.Cache = cache
	}

	ctx := tlog.ContextWithSpan(cmd.Context(), tlog.Root())
	timing := &driver.TimingSink{}

	if !st.IsDir() {
		unit, err := project.Load(arg)
		if err != nil {
			return err
		}
		opts.Sink = timing
		rep, err := driver.Analyze(ctx, unit, opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if !quiet {
			driver.WriteText(os.Stdout, rep)
		}
		if showTimings {
			printStageTimings(os.Stdout, timing.Timings())
		}
		return nil
	}

	units, err := driver.ListManifests(arg)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return fmt.Errorf("no unit manifests (*.toml) under %s", arg)
	}

	var results []driver.UnitResult
	if shouldUseTUI(uiModeValue) {
		results, err = runAnalyzeDirWithUI(ctx, "analyzing "+arg, arg, units, opts, timing)
	} else {
		opts.Sink = timing
		results, err = driver.AnalyzeDir(ctx, arg, opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Path, res.Err)
			continue
		}
		if !quiet {
			driver.WriteText(os.Stdout, res.Report)
			fmt.Fprintln(os.Stdout)
		}
	}
	if showTimings {
		printStageTimings(os.Stdout, timing.Timings())
	}

	if failed > 0 {
		return fmt.Errorf("analyzed %d unit(s), %d failed", len(results), failed)
	}
	if !quiet {
		fmt.Fprintln(os.Stdout, summaryLine(cmd, fmt.Sprintf("analyzed %d unit(s)", len(results))))
	}
	return nil
}

// summaryLine colors the closing line when the color flag and terminal
// allow it.
func summaryLine(cmd *cobra.Command, text string) string {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return text
	}
	if colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout)) {
		return color.GreenString(text)
	}
	return text
}

func openReportCache(dir string) (*driver.DiskCache, error) {
	if dir != "" {
		return driver.OpenDiskCacheAt(dir)
	}
	return driver.OpenDiskCache("chimc")
}
