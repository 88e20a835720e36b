package blockclock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualAdvance(t *testing.T) {
	c := NewManual(10)
	require.Equal(t, uint64(10), c.CurrentBlock())
	require.Equal(t, uint64(15), c.Advance(5))
	require.Equal(t, uint64(15), c.CurrentBlock())
}

func TestManualSetNeverGoesBackwards(t *testing.T) {
	c := NewManual(100)
	c.Set(50)
	require.Equal(t, uint64(100), c.CurrentBlock())
	c.Set(120)
	require.Equal(t, uint64(120), c.CurrentBlock())
}

func TestManualConcurrentAdvance(t *testing.T) {
	c := NewManual(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(2)
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(100), c.CurrentBlock())
}

func TestIntervalHeight(t *testing.T) {
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInterval(genesis, 2*time.Second)

	c.now = func() time.Time { return genesis.Add(-time.Minute) }
	require.Equal(t, uint64(0), c.CurrentBlock())

	c.now = func() time.Time { return genesis.Add(21 * time.Second) }
	require.Equal(t, uint64(10), c.CurrentBlock())
}
