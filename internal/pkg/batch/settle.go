package batch

import (
	"context"
	log "log/slog"
	"sync"
)

// Task 命名子任务
type Task struct {
	Name string
	Fn   func(context.Context) error
}

// SettleAll 并发执行全部子任务并等待各自落定，返回失败任务名到错误的映射
// 部分失败只记日志，由调用方决定是否视为致命
func SettleAll(ctx context.Context, tasks []Task) map[string]error {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	failed := make(map[string]error)

	for _, task := range tasks {
		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			if err := task.Fn(ctx); err != nil {
				log.WarnContext(ctx, "子任务执行失败", "task", task.Name, "error", err)
				mu.Lock()
				failed[task.Name] = err
				mu.Unlock()
			}
		}(task)
	}
	wg.Wait()
	return failed
}
