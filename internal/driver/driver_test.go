package driver_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"chim/internal/driver"
	"chim/internal/project"
	"chim/internal/storage"
)

const demoManifest = `
[unit]
name = "demo"

[[struct]]
name = "Point"
fields = [ { name = "x", type = "int" }, { name = "y", type = "int" } ]

[[struct]]
name = "Mixed"
fields = [ { name = "a", type = "bool" }, { name = "b", type = "int" }, { name = "c", type = "bool" } ]

[[var]]
name = "p"
type = "Point"
context = "main"
lifetime = 50

[[var]]
name = "big"
type = "Mixed"
context = "main"
lifetime = 500
escapes = true

[[var]]
name = "buf"
type = "Mixed"
context = "worker"
lifetime = 500

[[fn]]
name = "direct"
vregs = [ { id = 0, start = 0, end = 10 }, { id = 1, start = 5, end = 15 }, { id = 2, start = 20, end = 30 } ]

[[fn]]
name = "lowered"
insts = [
  { op = "alloca", dest = ".tmp0", type = "struct.Point" },
  { op = "store", dest = ".tmp0", src = "x" },
  { op = "ret", value = ".tmp0" },
]
`

func writeUnit(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func loadUnit(t *testing.T, content string) *project.Unit {
	t.Helper()
	path := writeUnit(t, t.TempDir(), "chim.toml", content)
	unit, err := project.Load(path)
	if err != nil {
		t.Fatalf("load unit: %v", err)
	}
	return unit
}

// collectSink gathers events; safe for concurrent batch runs.
type collectSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *collectSink) OnEvent(evt driver.Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *collectSink) all() []driver.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]driver.Event(nil), s.events...)
}

func TestAnalyze_FullPipeline(t *testing.T) {
	unit := loadUnit(t, demoManifest)

	rep, err := driver.Analyze(context.Background(), unit, driver.Options{})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if rep.Unit != "demo" {
		t.Errorf("expected unit %q, got %q", "demo", rep.Unit)
	}

	if len(rep.Layouts) != 2 {
		t.Fatalf("expected 2 layouts, got %d", len(rep.Layouts))
	}
	point := rep.Layouts[0]
	if point.Name != "Point" || point.Size != 8 || point.Align != 4 || point.Savings != 0 {
		t.Errorf("Point layout = %+v", point)
	}
	mixed := rep.Layouts[1]
	if mixed.Name != "Mixed" || mixed.Size != 8 || mixed.Align != 4 {
		t.Errorf("Mixed layout = %+v", mixed)
	}
	if mixed.Savings != 4 {
		t.Errorf("expected Mixed savings 4, got %d", mixed.Savings)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(mixed.FieldOrder, want) {
		t.Errorf("expected field order %v, got %v", want, mixed.FieldOrder)
	}

	if len(rep.Decisions) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(rep.Decisions))
	}
	wantStrategies := map[string]storage.Strategy{
		"p":   storage.StrategyStack,
		"big": storage.StrategyHeap,
		"buf": storage.StrategyRadixPool,
	}
	for _, d := range rep.Decisions {
		if want := wantStrategies[d.Name]; d.Strategy != want {
			t.Errorf("var %s: expected %v, got %v", d.Name, want, d.Strategy)
		}
	}

	if rep.RVO.Functions != 1 || rep.RVO.Rewrites != 1 {
		t.Errorf("expected rvo stats {1 1}, got %+v", rep.RVO)
	}

	if len(rep.Functions) != 2 {
		t.Fatalf("expected 2 function reports, got %d", len(rep.Functions))
	}
	direct := rep.Functions[0]
	if direct.Name != "direct" || direct.VRegs != 3 || direct.Spilled != 0 || direct.Colored != 3 {
		t.Errorf("direct report = %+v", direct)
	}
	// v0 and v1 overlap, so their registers must differ.
	if direct.Assigns[0].Phys == direct.Assigns[1].Phys {
		t.Errorf("overlapping vregs share register r%d", direct.Assigns[0].Phys)
	}
	lowered := rep.Functions[1]
	if lowered.Name != "lowered" || lowered.VRegs != 2 || lowered.Spilled != 0 {
		t.Errorf("lowered report = %+v", lowered)
	}
	for _, a := range lowered.Assigns {
		if a.Name == "" {
			t.Errorf("v%d lost its value name", a.Reg)
		}
	}
}

func TestAnalyze_SpillPolicy(t *testing.T) {
	const manifest = `
[unit]
name = "tight"

[regalloc]
physical = 1

[[fn]]
name = "hot"
vregs = [ { id = 0, start = 0, end = 10 }, { id = 1, start = 5, end = 15 } ]
`
	unit := loadUnit(t, manifest)

	_, err := driver.Analyze(context.Background(), unit, driver.Options{})
	if err == nil {
		t.Fatal("expected spill error with default options")
	}
	if !strings.Contains(err.Error(), "spill") {
		t.Errorf("expected spill in error, got %q", err.Error())
	}

	rep, err := driver.Analyze(context.Background(), unit, driver.Options{AllowSpills: true})
	if err != nil {
		t.Fatalf("analyze with AllowSpills: %v", err)
	}
	hot := rep.Functions[0]
	if hot.Spilled != 1 || hot.Colored != 1 {
		t.Errorf("expected 1 spilled and 1 colored, got %+v", hot)
	}
}

func TestAnalyze_ProgressEvents(t *testing.T) {
	unit := loadUnit(t, demoManifest)

	sink := &collectSink{}
	if _, err := driver.Analyze(context.Background(), unit, driver.Options{Sink: sink}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	events := sink.all()
	want := []struct {
		stage  driver.Stage
		status driver.Status
	}{
		{driver.StageLayout, driver.StatusWorking},
		{driver.StageLayout, driver.StatusDone},
		{driver.StageStorage, driver.StatusWorking},
		{driver.StageStorage, driver.StatusDone},
		{driver.StageRVO, driver.StatusWorking},
		{driver.StageRVO, driver.StatusDone},
		{driver.StageRegalloc, driver.StatusWorking},
		{driver.StageRegalloc, driver.StatusDone},
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d: %+v", len(want), len(events), events)
	}
	for i, evt := range events {
		if evt.Stage != want[i].stage || evt.Status != want[i].status {
			t.Errorf("event %d: expected %s/%s, got %s/%s",
				i, want[i].stage, want[i].status, evt.Stage, evt.Status)
		}
		if evt.Unit != "demo" {
			t.Errorf("event %d: expected unit demo, got %q", i, evt.Unit)
		}
	}
}

func TestAnalyze_TimingSink(t *testing.T) {
	unit := loadUnit(t, demoManifest)

	timing := &driver.TimingSink{}
	if _, err := driver.Analyze(context.Background(), unit, driver.Options{Sink: timing}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	got := timing.Timings()
	for _, stage := range driver.Stages() {
		if !got.Has(stage) {
			t.Errorf("missing timing for stage %s", stage)
		}
	}
}

func TestAnalyze_CacheRoundTrip(t *testing.T) {
	unit := loadUnit(t, demoManifest)

	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	first, err := driver.Analyze(context.Background(), unit, driver.Options{Cache: cache})
	if err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	sink := &collectSink{}
	second, err := driver.Analyze(context.Background(), unit, driver.Options{Cache: cache, Sink: sink})
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if got := sink.all(); len(got) != 0 {
		t.Errorf("expected no stage events on cache hit, got %d", len(got))
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached report differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDiskCache_MissThenHit(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}

	key := project.HashBytes([]byte("chim.toml contents"))
	var out driver.Report
	if ok, err := cache.Get(key, &out); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	rep := &driver.Report{
		Unit: "demo",
		Functions: []driver.FuncReport{
			{Name: "f", Physical: 8, VRegs: 1, Colored: 1, Assigns: []driver.Assign{{Name: "x"}}},
		},
	}
	if err := cache.Put(key, rep); err != nil {
		t.Fatalf("put: %v", err)
	}
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(&out, rep) {
		t.Errorf("roundtrip mismatch:\nput: %+v\ngot: %+v", rep, &out)
	}
}

func TestAnalyzeDir(t *testing.T) {
	dir := t.TempDir()
	alpha := writeUnit(t, dir, "alpha.toml", `
[unit]
name = "alpha"

[[var]]
name = "x"
type = "int"
context = "main"
lifetime = 10
`)
	beta := writeUnit(t, dir, "beta.toml", `
[unit]
name = "beta"

[[fn]]
name = "f"
vregs = [ { id = 0, start = 0, end = 5 } ]
`)
	broken := writeUnit(t, dir, "broken.toml", `
[unit]
name = "broken"

[[fn]]
name = "f"
insts = [ { op = "frobnicate" } ]
`)

	sink := &collectSink{}
	results, err := driver.AnalyzeDir(context.Background(), dir, driver.Options{Sink: sink, Jobs: 2})
	if err != nil {
		t.Fatalf("analyze dir: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wantPaths := []string{alpha, beta, broken}
	for i, res := range results {
		if res.Path != wantPaths[i] {
			t.Errorf("result %d: expected path %s, got %s", i, wantPaths[i], res.Path)
		}
	}
	if results[0].Err != nil || results[0].Report == nil {
		t.Errorf("alpha should succeed: %+v", results[0])
	}
	if results[1].Err != nil || results[1].Report == nil {
		t.Errorf("beta should succeed: %+v", results[1])
	}
	if results[2].Err == nil {
		t.Error("broken should fail to load")
	}

	known := map[string]bool{alpha: true, beta: true, broken: true}
	queued := 0
	for _, evt := range sink.all() {
		if !known[evt.Unit] {
			t.Errorf("event keyed by %q, want a manifest path", evt.Unit)
		}
		if evt.Status == driver.StatusQueued {
			queued++
		}
	}
	if queued != 3 {
		t.Errorf("expected 3 queued events, got %d", queued)
	}
}

func TestAnalyzeDir_Empty(t *testing.T) {
	results, err := driver.AnalyzeDir(context.Background(), t.TempDir(), driver.Options{})
	if err != nil {
		t.Fatalf("analyze dir: %v", err)
	}
	if results != nil {
		t.Errorf("expected no results, got %+v", results)
	}
}

func TestTimings_Accumulate(t *testing.T) {
	var tm driver.Timings
	tm.Add(driver.StageLayout, 3*time.Millisecond)
	tm.Add(driver.StageLayout, 2*time.Millisecond)
	tm.Add(driver.StageRegalloc, 5*time.Millisecond)

	if got := tm.Duration(driver.StageLayout); got != 5*time.Millisecond {
		t.Errorf("expected 5ms for layout, got %v", got)
	}
	if tm.Has(driver.StageStorage) {
		t.Error("storage should not be recorded")
	}
	if got := tm.Sum(); got != 10*time.Millisecond {
		t.Errorf("expected 10ms total, got %v", got)
	}
}

func TestWriteText(t *testing.T) {
	rep := &driver.Report{
		Unit: "demo",
		Layouts: []driver.LayoutReport{{
			Name:          "Mixed",
			Size:          8,
			Align:         4,
			Padding:       2,
			Savings:       4,
			OriginalOrder: []string{"a", "b", "c"},
			FieldOrder:    []string{"b", "a", "c"},
		}},
		Decisions: []driver.Decision{{
			Name: "buf", Context: "worker", TypeName: "Mixed",
			Size: 8, Lifetime: 500, Strategy: storage.StrategyRadixPool,
		}},
		Functions: []driver.FuncReport{{
			Name: "hot", Physical: 2, VRegs: 2, Colored: 1, Spilled: 1,
			Assigns: []driver.Assign{
				{Name: "x", Reg: 0, Phys: 1},
				{Name: "y", Reg: 1, Spilled: true, Slot: 0},
			},
		}},
	}

	var buf bytes.Buffer
	driver.WriteText(&buf, rep)
	out := buf.String()

	for _, want := range []string{
		"unit demo",
		"struct 'Mixed' layout:",
		"  size: 8 bytes",
		"  savings: 4 bytes",
		"  field order: a, b, c -> b, a, c",
		"var buf in worker: radix_pool (Mixed, 8 bytes, lifetime 500)",
		"fn hot: 2 vreg(s), 1 colored, 1 spilled (2 physical)",
		"  v0 x -> r1",
		"  v1 y -> slot 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
