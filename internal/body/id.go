package body

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	idPrefix       = "CB_"
	firstIDCounter = 1000
	maxIDStep      = 100
)

// IDAllocator hands out body ids of the form CB_<n>. After every allocation
// the counter advances by a random step in [1, maxIDStep], so ids are unique
// and increasing but not dense.
type IDAllocator struct {
	mu      sync.Mutex
	counter int
	rng     *rand.Rand
}

// NewIDAllocator returns an allocator drawing its steps from src.
// A nil src seeds from the current time.
func NewIDAllocator(src rand.Source) *IDAllocator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &IDAllocator{
		counter: firstIDCounter,
		rng:     rand.New(src),
	}
}

func (a *IDAllocator) NextID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := fmt.Sprintf("%s%d", idPrefix, a.counter)
	a.counter += a.rng.Intn(maxIDStep) + 1
	return id
}

// Observe moves the counter past an id issued elsewhere, typically one
// restored from a snapshot, so it is never handed out again.
func (a *IDAllocator) Observe(id string) {
	n, ok := parseID(id)
	if !ok {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if n >= a.counter {
		a.counter = n + 1
	}
}

func parseID(id string) (int, bool) {
	digits, ok := strings.CutPrefix(id, idPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
