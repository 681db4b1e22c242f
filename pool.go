package md2html

import "runtime"

// Worker count limits.
const (
	// MinWorkers keeps runs sequential by default.
	MinWorkers = 1

	// MaxWorkers caps parallel file conversions.
	MaxWorkers = 8
)

// ResolveWorkers determines how many jobs run at once.
// Priority: explicit workers > GOMAXPROCS (adjusted by automaxprocs in
// containers). The result is always within MinWorkers..MaxWorkers.
func ResolveWorkers(workers int) int {
	n := workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return min(max(n, MinWorkers), MaxWorkers)
}
