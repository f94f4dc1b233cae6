package main

import (
	"fmt"
	"io"
)

// WriteSummary prints the console block for each summary in order.
func WriteSummary(w io.Writer, summaries ...Summary) error {
	for _, s := range summaries {
		_, err := fmt.Fprintf(w, "%s: n=%d  min=%.3f  avg=%.3f  max=%.3f  std=%.3f\n  p95=%.3f  p99=%.3f\n",
			s.Name, s.Count, s.Min, s.Mean, s.Max, s.StdDev, s.P95, s.P99)
		if err != nil {
			return err
		}
	}
	return nil
}
