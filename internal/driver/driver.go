// Package driver runs the backend analysis pipeline over lowered units:
// struct layout, storage decisions, return value optimization and
// register allocation. Results come back as a Report per unit so callers
// can render, cache or aggregate them.
package driver

import (
	"context"
	"time"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"chim/internal/ir"
	"chim/internal/layout"
	"chim/internal/project"
	"chim/internal/regalloc"
	"chim/internal/rvo"
	"chim/internal/storage"
)

// Options tunes a single analysis run.
type Options struct {
	// AllowSpills records spilled registers in the report instead of
	// failing the run.
	AllowSpills bool
	// Jobs bounds batch parallelism; zero means GOMAXPROCS.
	Jobs int
	// Sink receives progress events when non-nil.
	Sink ProgressSink
	// Cache short-circuits analysis for unchanged manifests when
	// non-nil.
	Cache *DiskCache
}

// Analyze runs the full pipeline over one unit.
func Analyze(ctx context.Context, unit *project.Unit, opts Options) (_ *Report, err error) {
	if unit == nil {
		return nil, errors.New("nil unit")
	}

	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "analyze unit", "unit", unit.Name)
	defer tr.Finish("err", &err)

	var cacheKey project.Digest
	useCache := false
	if opts.Cache != nil && unit.Path != "" {
		if key, hashErr := project.HashFile(unit.Path); hashErr == nil {
			cacheKey = key
			useCache = true
			var cached Report
			if ok, getErr := opts.Cache.Get(cacheKey, &cached); getErr == nil && ok {
				tr.Printw("cache hit", "unit", unit.Name)
				return &cached, nil
			}
		}
	}

	rep := &Report{Unit: unit.Name}

	eng, err := runLayout(tr, unit, opts.Sink, rep)
	if err != nil {
		return nil, err
	}
	runStorage(tr, unit, eng, opts.Sink, rep)
	mod := runRVO(tr, unit, opts.Sink, rep)
	if err := runRegalloc(ctx, tr, unit, mod, opts, rep); err != nil {
		return nil, err
	}

	if useCache {
		if putErr := opts.Cache.Put(cacheKey, rep); putErr != nil {
			tr.Printw("cache write failed", "unit", unit.Name, "err", putErr)
		}
	}
	return rep, nil
}

// runLayout analyzes every declared struct and fills rep.Layouts. The
// returned engine already knows each struct, so later phases can size
// types against it.
func runLayout(tr tlog.Span, unit *project.Unit, sink ProgressSink, rep *Report) (*layout.Engine, error) {
	start := time.Now()
	emitStage(sink, unit.Name, StageLayout, StatusWorking, nil, 0)

	eng := layout.New(unit.Target)
	for _, s := range unit.Structs {
		if s.ValueType {
			eng.MarkValueType(s.Name)
		}
	}

	// Savings must be computed before SIMD widening inflates the
	// optimized size.
	savings := make(map[string]int, len(unit.Structs))
	for _, s := range unit.Structs {
		eng.AnalyzeStruct(s.Name, s.Fields)
		savings[s.Name] = eng.CalculateSavings(s.Name, s.Fields)
		if s.ValueType {
			eng.ApplySIMDAlignment(s.Name)
		}
	}

	for _, s := range unit.Structs {
		lo, ok := eng.Lookup(s.Name)
		if !ok {
			err := errors.New("struct %v vanished during layout", s.Name)
			emitStage(sink, unit.Name, StageLayout, StatusError, err, time.Since(start))
			return nil, err
		}
		rep.Layouts = append(rep.Layouts, LayoutReport{
			Name:          s.Name,
			Size:          lo.Size,
			Align:         lo.Align,
			Padding:       lo.Padding,
			Savings:       savings[s.Name],
			CacheAligned:  lo.CacheAligned,
			Recursive:     eng.Recursive(s.Name),
			OriginalOrder: lo.OriginalOrder,
			FieldOrder:    lo.OptimizedOrder(),
		})
	}

	elapsed := time.Since(start)
	emitStage(sink, unit.Name, StageLayout, StatusDone, nil, elapsed)
	tr.Printw("layout done", "structs", len(rep.Layouts), "elapsed", elapsed)
	return eng, nil
}

func runStorage(tr tlog.Span, unit *project.Unit, eng *layout.Engine, sink ProgressSink, rep *Report) {
	start := time.Now()
	emitStage(sink, unit.Name, StageStorage, StatusWorking, nil, 0)

	dec := storage.NewDecider(unit.Facts, eng, unit.Thresholds)
	for _, v := range unit.Vars {
		strategy := dec.Decide(v.Name, v.TypeName, v.Init, v.Context, v.Lifetime)
		rep.Decisions = append(rep.Decisions, Decision{
			Name:     v.Name,
			Context:  v.Context,
			TypeName: v.TypeName,
			Size:     dec.TypeSize(v.TypeName),
			Lifetime: v.Lifetime,
			Strategy: strategy,
		})
	}

	elapsed := time.Since(start)
	emitStage(sink, unit.Name, StageStorage, StatusDone, nil, elapsed)
	tr.Printw("storage done", "vars", len(rep.Decisions), "elapsed", elapsed)
}

// runRVO builds an IR module from the unit's instruction-stream
// functions and rewrites eligible returns. The module is returned so
// register allocation sees the rewritten bodies.
func runRVO(tr tlog.Span, unit *project.Unit, sink ProgressSink, rep *Report) *ir.Module {
	start := time.Now()
	emitStage(sink, unit.Name, StageRVO, StatusWorking, nil, 0)

	mod := ir.NewModule(unit.Name)
	for _, f := range unit.Functions {
		if len(f.Body) == 0 {
			continue
		}
		fn := ir.NewFunction(f.Name, ir.Void())
		fn.Body = append(fn.Body, f.Body...)
		mod.AddFunction(fn)
	}
	rep.RVO = rvo.OptimizeModule(mod)

	elapsed := time.Since(start)
	emitStage(sink, unit.Name, StageRVO, StatusDone, nil, elapsed)
	tr.Printw("rvo done", "functions", rep.RVO.Functions, "rewrites", rep.RVO.Rewrites, "elapsed", elapsed)
	return mod
}

func runRegalloc(ctx context.Context, tr tlog.Span, unit *project.Unit, mod *ir.Module, opts Options, rep *Report) error {
	start := time.Now()
	emitStage(opts.Sink, unit.Name, StageRegalloc, StatusWorking, nil, 0)

	for _, f := range unit.Functions {
		select {
		case <-ctx.Done():
			err := ctx.Err()
			emitStage(opts.Sink, unit.Name, StageRegalloc, StatusError, err, time.Since(start))
			return err
		default:
		}

		fr, res, err := allocateDecl(f, mod.Function(f.Name), unit.Physical)
		if err != nil {
			emitStage(opts.Sink, unit.Name, StageRegalloc, StatusError, err, time.Since(start))
			return errors.Wrap(err, "fn %v", f.Name)
		}
		if res != nil && !opts.AllowSpills {
			if err := res.ResolveSpills(); err != nil {
				emitStage(opts.Sink, unit.Name, StageRegalloc, StatusError, err, time.Since(start))
				return errors.Wrap(err, "fn %v", f.Name)
			}
		}
		rep.Functions = append(rep.Functions, fr)
	}

	elapsed := time.Since(start)
	emitStage(opts.Sink, unit.Name, StageRegalloc, StatusDone, nil, elapsed)
	tr.Printw("regalloc done", "functions", len(rep.Functions), "elapsed", elapsed)
	return nil
}

// allocateDecl allocates one function: directly from declared intervals,
// or from liveness over its lowered body.
func allocateDecl(decl project.FnDecl, fn *ir.Function, physical uint8) (FuncReport, *regalloc.Allocation, error) {
	fr := FuncReport{Name: decl.Name, Physical: physical}

	switch {
	case len(decl.Intervals) > 0:
		a := regalloc.New(physical)
		for _, iv := range decl.Intervals {
			a.AddInterval(iv.Reg, iv.Start, iv.End)
		}
		res, err := a.Run()
		if err != nil {
			return fr, nil, err
		}
		fillFuncReport(&fr, res, nil)
		return fr, res, nil

	case fn != nil:
		fa, err := regalloc.AllocateFunction(fn, physical)
		if err != nil {
			return fr, nil, err
		}
		fillFuncReport(&fr, fa.Result, fa.Names)
		return fr, fa.Result, nil
	}
	return fr, nil, nil
}

func fillFuncReport(fr *FuncReport, res *regalloc.Allocation, names []string) {
	regs := res.VRegs()
	fr.VRegs = len(regs)
	fr.Spilled = res.SpillCount()
	fr.Colored = fr.VRegs - fr.Spilled

	for _, r := range regs {
		a := Assign{Reg: uint32(r)}
		if int(r) < len(names) {
			a.Name = names[r]
		}
		if slot, ok := res.SlotOf(r); ok {
			a.Spilled = true
			a.Slot = slot
		} else if phys, ok := res.PhysOf(r); ok {
			a.Phys = uint8(phys)
		}
		fr.Assigns = append(fr.Assigns, a)
	}
}
