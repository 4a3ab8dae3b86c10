package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionID_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionID("scenario-0001")

	assert.Equal(t, "scenario-0001", gen.Generate())
	assert.Equal(t, "scenario-0001", gen.Generate())
}

func TestFixedSessionID_EmptyIDDefault(t *testing.T) {
	gen := NewFixedSessionID("")

	assert.Equal(t, "test-session-default", gen.Generate())
}

func TestFixedSessionID_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionID("shared")

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "shared", gen.Generate())
			}
		}()
	}
	wg.Wait()
}
