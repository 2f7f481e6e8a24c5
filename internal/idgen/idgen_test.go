package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewUUID()
	a, b := gen.NewID(), gen.NewID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestSequenceConcurrentUnique(t *testing.T) {
	t.Parallel()

	seq := NewSequence("alert")
	assert.Equal(t, "alert-1", seq.NewID())

	var mu sync.Mutex
	seen := make(map[string]struct{})
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := seq.NewID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
	assert.Equal(t, "alert-52", seq.NewID())
}
