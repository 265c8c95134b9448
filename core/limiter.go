package core

import (
	"fmt"
	"sync"
)

// CallBudget enforces a maximum number of completion calls per request. A
// generation request uses a budget of one so a rejected draft can never be
// re-sent to the model within the same request.
type CallBudget struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewCallBudget creates a budget allowing max calls. If max == 0, unlimited
// calls are allowed.
func NewCallBudget(max int) *CallBudget {
	return &CallBudget{max: max}
}

// Spend records one call and returns an error if the limit is exceeded.
func (b *CallBudget) Spend() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.count >= b.max {
		return fmt.Errorf("%w: max %d", ErrBudgetExhausted, b.max)
	}
	b.count++

	return nil
}

// Count returns the number of calls spent.
func (b *CallBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.count
}

// Remaining returns how many calls are left before hitting the limit.
func (b *CallBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max == 0 {
		return -1 // unlimited
	}

	return b.max - b.count
}
