package snowflake

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorMachineID(t *testing.T) {
	t.Parallel()

	require.Equal(t, 42, New(42).MachineID())

	// only the low 10 bits are kept
	require.Equal(t, 1, New(serverMax+1).MachineID())
}

func TestGeneratorNextMonotonic(t *testing.T) {
	t.Parallel()

	g := New(1)

	var last uint64
	for i := 0; i < 10000; i++ {
		next := g.Next()
		require.Greater(t, next, last)
		last = next
	}
}

func TestGeneratorNextUnique(t *testing.T) {
	t.Parallel()

	g := New(1)

	const (
		workers = 8
		perWork = 2000
	)

	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWork)
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]uint64, 0, perWork)
			for i := 0; i < perWork; i++ {
				ids = append(ids, g.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				_, dup := seen[id]
				require.False(t, dup)
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWork)
}

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	g := WithMachineID(7)
	require.Equal(t, 7, g.Generator.MachineID())

	id := g.ID()
	require.True(t, id.Valid())

	next := g.ID()
	require.Greater(t, uint64(next), uint64(id))
}
