package health

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultConcurrency = 4
)

// Aggregator 并发执行检查项，汇总为一个 Response
type Aggregator struct {
	timeout     time.Duration
	concurrency int

	mu       sync.RWMutex
	checkers []Checker
	metadata map[string]interface{}
}

// NewAggregator timeout 为每个检查项的超时，<= 0 时为 5 秒
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Aggregator{
		timeout:     timeout,
		concurrency: defaultConcurrency,
		metadata:    make(map[string]interface{}),
	}
}

// WithConcurrency 限制同时运行的检查项数量
func (a *Aggregator) WithConcurrency(n int) *Aggregator {
	if n > 0 {
		a.concurrency = n
	}
	return a
}

func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checkers = append(a.checkers, checkers...)
}

// SetMetadata 附加到响应中的元数据
func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Check 运行全部检查项。检查项失败不会中断其他检查项
func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()

	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	metadata := maps.Clone(a.metadata)
	a.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = a.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Status:    StatusHealthy,
		Timestamp: start,
		Checks:    make(map[string]CheckResult, len(results)),
		Metadata:  metadata,
	}
	for _, r := range results {
		resp.Checks[r.Name] = r
		if severity(r.Status) > severity(resp.Status) {
			resp.Status = r.Status
		}
	}
	resp.Duration = time.Since(start)
	return resp
}

// run 执行单个检查项，panic 视为失败
func (a *Aggregator) run(ctx context.Context, c Checker) (result CheckResult) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	result = CheckResult{Name: c.Name(), Timestamp: time.Now()}
	defer func() {
		if r := recover(); r != nil {
			result.fail(c, fmt.Errorf("panic: %v", r))
		}
		result.Duration = time.Since(result.Timestamp)
	}()

	if err := c.Check(ctx); err != nil {
		result.fail(c, err)
		return result
	}
	result.Status = StatusHealthy
	result.Message = "OK"
	return result
}

func (r *CheckResult) fail(c Checker, err error) {
	r.Error = err.Error()
	if _, ok := c.(degraded); ok {
		r.Status = StatusDegraded
		r.Message = "Degraded"
		return
	}
	r.Status = StatusUnhealthy
	r.Message = "Health check failed"
}

func severity(s Status) int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	}
	return 0
}
