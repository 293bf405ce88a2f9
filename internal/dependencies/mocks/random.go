package mocks

import (
	"sync"

	"github.com/mcoot/anagrams-go/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued results are consumed in order; once a queue is empty the
// zero value is returned. Shuffle leaves the order untouched unless
// Reverse is set.
type MockRandom struct {
	mu sync.Mutex

	IntnResults []int
	intnIndex   int

	StringResults []string
	stringIndex   int

	Reverse bool
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.IntnResults) {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// Shuffle reverses the elements when Reverse is set, otherwise does nothing
func (r *MockRandom) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	reverse := r.Reverse
	r.mu.Unlock()
	if !reverse {
		return
	}
	for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
		swap(i, j)
	}
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.StringResults = append(r.StringResults, values...)
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
	r.StringResults = nil
	r.stringIndex = 0
	r.Reverse = false
}
