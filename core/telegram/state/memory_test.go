package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stateAsking  State = "asking"
	stateWorking State = "working"
)

func TestMemoryManagerDefaults(t *testing.T) {
	m := NewMemoryManager()

	assert.Equal(t, StateIdle, m.GetState(1))
	assert.False(t, m.InProgress(1))
	s := m.Get(1)
	assert.Equal(t, StateIdle, s.State)
	assert.Empty(t, s.TempData)
}

func TestMemoryManagerTransitionGuards(t *testing.T) {
	m := NewMemoryManager()

	prev, ok := m.Transition(7, stateWorking, stateAsking)
	assert.False(t, ok)
	assert.Equal(t, StateIdle, prev)
	assert.Equal(t, StateIdle, m.GetState(7))

	_, ok = m.Transition(7, stateAsking, StateIdle)
	require.True(t, ok)
	prev, ok = m.Transition(7, stateWorking, stateAsking)
	require.True(t, ok)
	assert.Equal(t, stateAsking, prev)
	assert.True(t, m.InProgress(7))

	// Without guards the move is unconditional.
	_, ok = m.Transition(7, StateIdle)
	assert.True(t, ok)
	assert.False(t, m.InProgress(7))
}

func TestMemoryManagerTransitionIsExclusive(t *testing.T) {
	m := NewMemoryManager()
	m.SetState(3, stateAsking)

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := m.Transition(3, stateWorking, stateAsking); ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

func TestMemoryManagerTempData(t *testing.T) {
	m := NewMemoryManager()
	m.SetTemp(5, "product", "shop-template")
	m.SetTemp(5, "count", 3)

	product, ok := TempAs[string](m, 5, "product")
	require.True(t, ok)
	assert.Equal(t, "shop-template", product)

	_, ok = TempAs[string](m, 5, "count")
	assert.False(t, ok, "type mismatch must not match")

	snapshot := m.Get(5)
	snapshot.TempData["product"] = "mutated"
	product, _ = TempAs[string](m, 5, "product")
	assert.Equal(t, "shop-template", product, "Get must return a copy")

	m.ClearTemp(5, "product")
	_, ok = m.GetTemp(5, "product")
	assert.False(t, ok)

	m.Clear(5)
	_, ok = m.GetTemp(5, "count")
	assert.False(t, ok)
}
