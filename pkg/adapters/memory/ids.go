package memory

import (
	"context"
	"fmt"
	"sync"
)

// Allocator implements ports.IDAllocator with per-type counters held in memory.
type Allocator struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewAllocator creates an allocator whose counters all start at zero.
func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[string]int)}
}

// Next returns "{nodeType}-{n}" where n counts up from 1 per type.
func (a *Allocator) Next(_ context.Context, nodeType string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.counters[nodeType]++
	return fmt.Sprintf("%s-%d", nodeType, a.counters[nodeType]), nil
}
