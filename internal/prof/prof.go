// Package prof backs the chimc profiling flags. A Session owns the
// output files of every requested profiler and tears them down in one
// call, in the right order.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
)

// Session holds the profilers started by Start.
type Session struct {
	cpu     *os.File
	trace   *os.File
	memPath string
	done    bool
}

// Start enables every profiler with a non-empty output path and
// returns a Session that stops them. Empty paths are skipped, so a
// usable Session comes back even when nothing is profiled. On error
// any profiler already started is stopped again.
func Start(cpuPath, memPath, tracePath string) (*Session, error) {
	s := &Session{}
	if cpuPath != "" {
		f, err := os.Create(cpuPath)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpu = f
	}
	if tracePath != "" {
		f, err := os.Create(tracePath)
		if err != nil {
			_ = s.Stop()
			return nil, err
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			_ = s.Stop()
			return nil, err
		}
		s.trace = f
	}
	// Set last so an unwinding Stop does not write a heap profile.
	s.memPath = memPath
	return s, nil
}

// Stop flushes and closes every active profiler and, when requested,
// writes the heap profile. Safe to call more than once.
func (s *Session) Stop() error {
	if s == nil || s.done {
		return nil
	}
	s.done = true
	if s.trace != nil {
		rtrace.Stop()
		_ = s.trace.Close()
		s.trace = nil
	}
	if s.cpu != nil {
		pprof.StopCPUProfile()
		_ = s.cpu.Close()
		s.cpu = nil
	}
	if s.memPath == "" {
		return nil
	}
	return writeHeapProfile(s.memPath)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
