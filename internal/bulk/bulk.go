// Package bulk 实现批量操作执行器。
// 后端没有批量端点，删除 N 个 Pod/用户仍然是 N 次独立调用；
// 执行器限制并发度、收集结构化结果，单项失败不会中断其余项。
package bulk

import (
	"context"
	"sync"
)

// Failure 单项失败记录
// Message 是 Err 的文本形式，供 JSON 序列化
type Failure struct {
	ID      string `json:"id"`
	Err     error  `json:"-"`
	Message string `json:"message"`
}

// Result 批量执行结果，保持与输入一致的顺序
type Result struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// OK 是否全部成功
func (r Result) OK() bool {
	return len(r.Failed) == 0
}

// Op 针对单个标识的操作
type Op func(ctx context.Context, id string) error

// Run 按限定并发度执行批量操作
// concurrency <= 1 时顺序执行；上下文取消后未开始的项记为失败
func Run(ctx context.Context, ids []string, concurrency int, op Op) Result {
	if concurrency < 1 {
		concurrency = 1
	}

	errs := make([]error, len(ids))

	if concurrency == 1 {
		for i, id := range ids {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = op(ctx, id)
		}
	} else {
		var wg sync.WaitGroup
		sem := make(chan struct{}, concurrency)
		for i, id := range ids {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				if err := ctx.Err(); err != nil {
					errs[i] = err
					return
				}
				errs[i] = op(ctx, id)
			}(i, id)
		}
		wg.Wait()
	}

	result := Result{Succeeded: []string{}, Failed: []Failure{}}
	for i, id := range ids {
		if errs[i] != nil {
			result.Failed = append(result.Failed, Failure{ID: id, Err: errs[i], Message: errs[i].Error()})
		} else {
			result.Succeeded = append(result.Succeeded, id)
		}
	}
	return result
}
