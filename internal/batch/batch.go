package batch

import (
	"context"
	"io"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"go.uber.org/zap"
)

// Job is one independent call; a failing job never affects the others.
type Job[T any] struct {
	Name string
	Do   func(ctx context.Context) (T, error)
}

type Result[T any] struct {
	Name     string
	Value    T
	Err      error
	Duration time.Duration
}

type Runner struct {
	maxWorkers int
	logger     *zap.Logger
	progress   io.Writer
}

type RunnerOption func(*Runner)

func WithLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithProgress renders a progress bar of finished jobs to w.
func WithProgress(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.progress = w
	}
}

func NewRunner(maxWorkers int, opts ...RunnerOption) *Runner {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	runner := &Runner{
		maxWorkers: maxWorkers,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(runner)
	}

	return runner
}

func (r *Runner) MaxWorkers() int {
	return r.maxWorkers
}

// Run executes jobs on a worker pool and returns their results in input order.
func Run[T any](ctx context.Context, r *Runner, jobs []Job[T]) []Result[T] {
	if len(jobs) == 0 {
		return nil
	}

	results := make([]Result[T], len(jobs))

	var (
		progress *mpb.Progress
		bar      *mpb.Bar
	)
	if r.progress != nil {
		progress = mpb.New(
			mpb.WithOutput(r.progress),
			mpb.WithWidth(40),
			mpb.WithRefreshRate(180*time.Millisecond),
		)
		bar = progress.AddBar(int64(len(jobs)),
			mpb.PrependDecorators(
				decor.Name("predicting", decor.WC{W: 12, C: decor.DidentRight}),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Elapsed(decor.ET_STYLE_GO),
			),
		)
	}

	wp := workerpool.New(r.maxWorkers)
	for i, job := range jobs {
		i, job := i, job
		wp.Submit(func() {
			results[i] = runJob(ctx, r.logger, job)
			if bar != nil {
				bar.Increment()
			}
		})
	}
	wp.StopWait()

	if progress != nil {
		progress.Wait()
	}

	return results
}

func runJob[T any](ctx context.Context, logger *zap.Logger, job Job[T]) Result[T] {
	result := Result[T]{Name: job.Name}
	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	start := time.Now()
	result.Value, result.Err = job.Do(ctx)
	result.Duration = time.Since(start)

	if result.Err != nil {
		logger.Warn("job failed", zap.String("job", job.Name), zap.Error(result.Err))
	} else {
		logger.Debug("job finished", zap.String("job", job.Name), zap.Duration("duration", result.Duration))
	}

	return result
}
