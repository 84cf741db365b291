// Package profiling wires the --profile-* flags to runtime/pprof and
// runtime/trace, and reports heap usage after a bench run.
package profiling

import (
	stderrors "errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Options names the output file of each profile. Empty paths are skipped.
type Options struct {
	CPU    string
	Heap   string
	Allocs string
	Block  string
	Trace  string
}

// Enabled reports whether any profile was requested.
func (o Options) Enabled() bool {
	return o.CPU != "" || o.Heap != "" || o.Allocs != "" || o.Block != "" || o.Trace != ""
}

// Session is a set of running profiles. Snapshot profiles (heap, allocs,
// block) are written by Stop.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and tracing as requested by opts. On error
// anything already started is stopped.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}

	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, fmt.Errorf("failed to create CPU profile file: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to start CPU profile: %w", err)
		}
		s.cpuFile = f
	}

	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			s.stopRunning()
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopRunning()
			return nil, fmt.Errorf("failed to start trace: %w", err)
		}
		s.traceFile = f
	}

	if opts.Block != "" {
		runtime.SetBlockProfileRate(1)
	}

	return s, nil
}

// Stop ends running profiles and writes the snapshot ones. It is safe to
// call more than once.
func (s *Session) Stop() error {
	s.stopRunning()

	var errs []error
	if s.opts.Heap != "" {
		// Collect first so the heap profile reflects live chains only.
		runtime.GC()
		errs = append(errs, writeProfile("heap", s.opts.Heap, 0))
	}
	if s.opts.Allocs != "" {
		errs = append(errs, writeProfile("allocs", s.opts.Allocs, 0))
	}
	if s.opts.Block != "" {
		errs = append(errs, writeProfile("block", s.opts.Block, 0))
		runtime.SetBlockProfileRate(0)
	}
	s.opts.Heap, s.opts.Allocs, s.opts.Block = "", "", ""
	return stderrors.Join(errs...)
}

func (s *Session) stopRunning() {
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		_ = s.cpuFile.Close()
		s.cpuFile = nil
	}
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}
}

func writeProfile(name, path string, debug int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s profile file: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.Lookup(name).WriteTo(f, debug); err != nil {
		return fmt.Errorf("failed to write %s profile: %w", name, err)
	}
	return nil
}

// MemStats returns current memory statistics.
func MemStats() runtime.MemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m
}

// MemUsage summarizes allocation during a measured section.
type MemUsage struct {
	HeapInUse  uint64
	TotalAlloc uint64
	NumGC      uint32
}

// String renders the usage for the bench summary.
func (u MemUsage) String() string {
	return fmt.Sprintf("heap %s, allocated %s, %d GCs",
		FormatBytes(u.HeapInUse), FormatBytes(u.TotalAlloc), u.NumGC)
}

// Measure runs fn and reports how much it allocated. HeapInUse is the heap
// after fn returns, before any collection.
func Measure(fn func()) MemUsage {
	before := MemStats()
	fn()
	after := MemStats()
	return MemUsage{
		HeapInUse:  after.HeapInuse,
		TotalAlloc: after.TotalAlloc - before.TotalAlloc,
		NumGC:      after.NumGC - before.NumGC,
	}
}

// FormatBytes formats bytes into human-readable form.
func FormatBytes(bytes uint64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.2f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.2f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.2f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
