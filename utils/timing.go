package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for the pipeline stages
type TimingStats struct {
	TotalTime     time.Duration
	ModelLoadTime time.Duration
	BuildTime     time.Duration
	LoweringTime  time.Duration
	EpilogueTime  time.Duration
	InterpTime    time.Duration
	StoreTime     time.Duration
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats) {
	if !Verbose {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total time: %v\n", stats.TotalTime)
	fmt.Fprintln(Output, "\nBreakdown by stage:")
	fmt.Fprintf(Output, "  Model loading: %v (%.1f%%)\n", stats.ModelLoadTime, pct(stats.ModelLoadTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Network build: %v (%.1f%%)\n", stats.BuildTime, pct(stats.BuildTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Lowering: %v (%.1f%%)\n", stats.LoweringTime, pct(stats.LoweringTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Epilogue: %v (%.1f%%)\n", stats.EpilogueTime, pct(stats.EpilogueTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Interpretation: %v (%.1f%%)\n", stats.InterpTime, pct(stats.InterpTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Store: %v (%.1f%%)\n", stats.StoreTime, pct(stats.StoreTime, stats.TotalTime))
}

func pct(part, total time.Duration) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// DurationUS converts any time.Duration to micro-seconds as float64
func DurationUS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000.0
}
