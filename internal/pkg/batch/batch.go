package batch

import (
	"context"
	log "log/slog"
	"sync"
	"time"
)

// Options 批处理参数
type Options struct {
	BatchSize     int
	Concurrency   int
	RetryAttempts int
	RetryDelay    time.Duration
}

// DefaultOptions 默认批处理参数
func DefaultOptions() Options {
	return Options{
		BatchSize:     10,
		Concurrency:   3,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

func (o Options) normalized() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 1
	}
	return o
}

// Process 分块并发处理 items，单条失败重试后仍失败则记日志并从结果中剔除
// 全部失败时返回空切片而不是错误
func Process[T, R any](ctx context.Context, items []T, opts Options, fn func(context.Context, T) (R, error)) []R {
	opts = opts.normalized()

	results := make([]R, len(items))
	succeeded := make([]bool, len(items))

	for start := 0; start < len(items); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(items) {
			end = len(items)
		}
		processChunk(ctx, items[start:end], start, opts, fn, results, succeeded)
	}

	kept := make([]R, 0, len(items))
	for i, ok := range succeeded {
		if ok {
			kept = append(kept, results[i])
		}
	}
	return kept
}

func processChunk[T, R any](ctx context.Context, chunk []T, offset int, opts Options, fn func(context.Context, T) (R, error), results []R, succeeded []bool) {
	sem := make(chan struct{}, opts.Concurrency)
	var wg sync.WaitGroup

	for i, item := range chunk {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			r, err := withRetry(ctx, opts, func(ctx context.Context) (R, error) {
				return fn(ctx, item)
			})
			if err != nil {
				log.WarnContext(ctx, "批处理单条失败，已跳过", "index", idx, "error", err)
				return
			}
			results[idx] = r
			succeeded[idx] = true
		}(offset+i, item)
	}
	wg.Wait()
}

// withRetry 指数退避重试，第 n 次失败后等待 RetryDelay*2^n
func withRetry[R any](ctx context.Context, opts Options, fn func(context.Context) (R, error)) (R, error) {
	var zero R
	var lastErr error

	for attempt := 0; attempt < opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := opts.RetryDelay * time.Duration(1<<attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}
		r, err := fn(ctx)
		if err == nil {
			return r, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
