package bench

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownOperation reports a run of a name absent from the catalog.
var ErrUnknownOperation = errors.New("bench: unknown operation")

// Catalog maps operation names to closures run against the subject under
// test. A closure must force full evaluation of the operation's result
// before returning — a lazily produced result must be fully consumed, or
// timings are meaningless — and must discard the result: the harness
// measures execution cost, not output.
type Catalog[D any] map[string]func(ctx context.Context, d D) error

// TrialError wraps a failure raised inside a timed invocation with the
// operation name and trial index, so a multi-operation run can report which
// operation failed without understanding any of them.
type TrialError struct {
	Op    string
	Trial int
	Err   error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("bench: operation %s failed on trial %d: %v", e.Op, e.Trial, e.Err)
}

func (e *TrialError) Unwrap() error {
	return e.Err
}

// Results maps operation names to their measured per-invocation cost.
type Results map[string]time.Duration

// Milliseconds converts the results to the fixed reporting unit, suitable
// for tabulation by a downstream presentation layer.
func (r Results) Milliseconds() map[string]float64 {
	out := make(map[string]float64, len(r))
	for name, d := range r {
		out[name] = float64(d) / float64(time.Millisecond)
	}
	return out
}

// Runner times catalog operations against a subject. It holds a read-only
// reference to the subject for the duration of a run and never inspects it;
// the subject's own immutability guarantee is what makes repeated trials
// observe identical state.
type Runner[D any] struct {
	catalog Catalog[D]
	opts    options
}

// NewRunner creates a runner over the given catalog.
func NewRunner[D any](catalog Catalog[D], opts ...Option) *Runner[D] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner[D]{catalog: catalog, opts: o}
}

// Run measures the named operation: repetitions independent trials, each
// the mean of innerLoops consecutive invocations, reported as the minimum
// of the trial means. The minimum deliberately biases toward the best-case
// achievable time, suppressing unrelated OS and runtime jitter that would
// otherwise make backends incomparable.
//
// Trials run sequentially to keep cache and scheduler effects comparable.
// A name absent from the catalog fails with ErrUnknownOperation; a failure
// inside the operation surfaces as a TrialError.
func (r *Runner[D]) Run(ctx context.Context, subject D, name string) (time.Duration, error) {
	op, ok := r.catalog[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}

	best := time.Duration(-1)
	for trial := 0; trial < r.opts.repetitions; trial++ {
		start := time.Now()
		for i := 0; i < r.opts.innerLoops; i++ {
			if err := op(ctx, subject); err != nil {
				return 0, &TrialError{Op: name, Trial: trial, Err: err}
			}
		}
		mean := time.Since(start) / time.Duration(r.opts.innerLoops)

		if best < 0 || mean < best {
			best = mean
		}
		r.opts.logger.Debug("bench: trial complete",
			zap.String("op", name),
			zap.Int("trial", trial),
			zap.Duration("mean", mean))
	}
	return best, nil
}

// RunAll measures every operation in the catalog, in name order for
// repeatability. A failing operation does not discard timings already
// obtained for other operations: RunAll keeps measuring the rest and
// returns the partial results together with the joined failures.
func (r *Runner[D]) RunAll(ctx context.Context, subject D) (Results, error) {
	results := make(Results, len(r.catalog))
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(r.catalog)) {
		elapsed, err := r.Run(ctx, subject, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results[name] = elapsed
	}
	return results, errors.Join(errs...)
}
