package matching

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// BatchItem is one message to evaluate against a FAQ set. ExpectedFAQID
// is optional; when set, the outcome records whether the pipeline
// produced that FAQ.
type BatchItem struct {
	Message       string
	ExpectedFAQID string
}

// BatchOutcome pairs an evaluated item with its pipeline result.
type BatchOutcome struct {
	Item   BatchItem
	Result *MatchResult
	Hit    bool
}

// BatchProcessor runs many messages through the pipeline concurrently.
// Used by offline evaluation of a tenant's FAQ set against a list of
// sample questions.
type BatchProcessor struct {
	router     *Router
	maxWorkers int
	timeout    time.Duration
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(router *Router, maxWorkers int, timeout time.Duration) *BatchProcessor {
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BatchProcessor{
		router:     router,
		maxWorkers: maxWorkers,
		timeout:    timeout,
	}
}

// Run evaluates every item against the FAQ set and settings carried by
// base. Outcomes are returned in item order. The FAQ slice in base is
// shared across workers and must not be mutated during the run.
func (bp *BatchProcessor) Run(ctx context.Context, base *MatchRequest, items []BatchItem) ([]BatchOutcome, error) {
	if len(items) == 0 {
		return []BatchOutcome{}, nil
	}

	runCtx, cancel := context.WithTimeout(ctx, bp.timeout)
	defer cancel()

	type workItem struct {
		index int
		item  BatchItem
	}

	workChan := make(chan workItem, len(items))
	results := make([]BatchOutcome, len(items))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, item := range items {
		workChan <- workItem{index: i, item: item}
	}
	close(workChan)

	for i := 0; i < bp.maxWorkers && i < len(items); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workChan {
				req := *base
				req.Message = w.item.Message
				result := bp.router.Match(runCtx, &req)

				outcome := BatchOutcome{Item: w.item, Result: result}
				if w.item.ExpectedFAQID != "" {
					outcome.Hit = result.Kind == ResultFAQ && result.FAQID == w.item.ExpectedFAQID
				}

				mu.Lock()
				results[w.index] = outcome
				mu.Unlock()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-runCtx.Done():
		return results, fmt.Errorf("batch evaluation timeout after %v", bp.timeout)
	}

	return results, nil
}
