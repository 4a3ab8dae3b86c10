package testutil

import "sync"

// StepCounter numbers the key presses of a scenario, accepted or not.
//
// Session seq only counts presses that reached the engine. StepCounter also
// counts rejected labels, so a transcript line can be traced back to the
// scenario key that produced it even after a typo.
type StepCounter struct {
	mu       sync.Mutex
	n        int64
	rejected []int64
}

// NewStepCounter returns a counter whose first step is 1.
func NewStepCounter() *StepCounter {
	return &StepCounter{}
}

// Next returns the next step number.
func (c *StepCounter) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Current returns the last step number handed out, 0 if none.
func (c *StepCounter) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reject marks step as a press the session refused.
func (c *StepCounter) Reject(step int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected = append(c.rejected, step)
}

// Rejected returns the rejected steps in the order they were marked.
func (c *StepCounter) Rejected() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.rejected...)
}

// Accepted returns how many steps were not rejected.
// After a scenario it must equal the session's seq.
func (c *StepCounter) Accepted() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n - int64(len(c.rejected))
}

// Reset starts numbering from 1 again and forgets rejections.
func (c *StepCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
	c.rejected = nil
}
