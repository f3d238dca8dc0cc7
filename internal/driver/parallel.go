package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"chim/internal/project"
)

// UnitResult pairs one manifest with its analysis outcome. A failed
// unit carries its error here; it does not abort the batch.
type UnitResult struct {
	Path   string
	Report *Report
	Err    error
}

// ListManifests returns the sorted list of *.toml manifests under dir.
func ListManifests(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".toml") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Sort for deterministic order
	sort.Strings(files)
	return files, nil
}

// unitSink rekeys everything one unit emits under its manifest path, so
// batch consumers see a single key per unit from queued through done.
type unitSink struct {
	sink ProgressSink
	unit string
}

func (s unitSink) OnEvent(evt Event) {
	evt.Unit = s.unit
	s.sink.OnEvent(evt)
}

func unitOptions(opts Options, path string) Options {
	if opts.Sink != nil {
		opts.Sink = unitSink{sink: opts.Sink, unit: path}
	}
	return opts
}

// AnalyzeDir loads and analyzes every unit manifest under dir in
// parallel. Results are ordered by manifest path.
func AnalyzeDir(ctx context.Context, dir string, opts Options) ([]UnitResult, error) {
	files, err := ListManifests(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	for _, path := range files {
		emitStage(opts.Sink, path, StageLayout, StatusQueued, nil, 0)
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Results are written by index, so no mutex is needed.
	results := make([]UnitResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func(i int, path string) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				unit, err := project.Load(path)
				if err != nil {
					results[i] = UnitResult{Path: path, Err: err}
					emitStage(opts.Sink, path, StageLayout, StatusError, err, 0)
					return nil
				}

				rep, err := Analyze(gctx, unit, unitOptions(opts, path))
				results[i] = UnitResult{Path: path, Report: rep, Err: err}
				return nil
			}
		}(i, path))
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
