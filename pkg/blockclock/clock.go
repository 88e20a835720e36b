// Package blockclock provides the logical block height used for farm accrual.
package blockclock

import (
	"sync/atomic"
	"time"
)

// Clock returns a monotonic logical block height.
type Clock interface {
	CurrentBlock() uint64
}

// Manual is a clock advanced explicitly by the caller.
type Manual struct {
	height atomic.Uint64
}

// NewManual returns a manual clock starting at height.
func NewManual(height uint64) *Manual {
	m := &Manual{}
	m.height.Store(height)
	return m
}

func (m *Manual) CurrentBlock() uint64 {
	return m.height.Load()
}

// Advance moves the clock forward by n blocks and returns the new height.
func (m *Manual) Advance(n uint64) uint64 {
	return m.height.Add(n)
}

// Set moves the clock to height. Heights never go backwards; a lower value is ignored.
func (m *Manual) Set(height uint64) {
	for {
		cur := m.height.Load()
		if height <= cur {
			return
		}
		if m.height.CompareAndSwap(cur, height) {
			return
		}
	}
}

// Interval derives the height from wall time: one block per interval since genesis.
type Interval struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
}

// NewInterval returns a clock producing a block every interval since genesis.
func NewInterval(genesis time.Time, interval time.Duration) *Interval {
	if interval <= 0 {
		interval = time.Second
	}
	return &Interval{genesis: genesis, interval: interval, now: time.Now}
}

func (c *Interval) CurrentBlock() uint64 {
	elapsed := c.now().Sub(c.genesis)
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed / c.interval)
}
