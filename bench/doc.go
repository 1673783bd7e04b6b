// Package bench measures the wall-clock cost of named operations against a
// subject under test, typically a thunder.Dataset backend. The runner knows
// nothing about the subject beyond the catalog closures handed to it, so
// the identical runner and catalog can drive a local engine and a
// distributed stand-in and produce comparable numbers.
//
// Measurement policy: each operation runs for a number of independent
// trials (default 3), each trial the mean of a number of consecutive
// invocations (default 3), and the reported figure is the minimum of the
// trial means — the standard micro-benchmark guard against scheduling
// noise.
//
// Basic usage:
//
//	catalog := bench.Catalog[MySubject]{
//	    "sum": func(ctx context.Context, s MySubject) error {
//	        _, err := s.Sum(ctx)
//	        return err
//	    },
//	}
//
//	runner := bench.NewRunner(catalog, bench.WithRepetitions(5))
//	elapsed, err := runner.Run(ctx, subject, "sum")
//
// RunAll measures the whole catalog and keeps the timings of successful
// operations even when another operation fails; failures carry the
// operation name and trial index.
package bench
