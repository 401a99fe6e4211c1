// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package workerspool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_ForEach(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(3)
	assert.True(t, pool.IsEnabled())

	var running, maxRunning atomic.Int32
	results := make([]int, 20)
	pool.ForEach(len(results), func(ii int) {
		current := running.Add(1)
		for {
			prev := maxRunning.Load()
			if current <= prev || maxRunning.CompareAndSwap(prev, current) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		results[ii] = ii * ii
		running.Add(-1)
	})
	for ii, v := range results {
		assert.Equal(t, ii*ii, v)
	}
	assert.LessOrEqual(t, int(maxRunning.Load()), 3)
	assert.Equal(t, int32(0), running.Load())
}

func TestPool_NoParallelism(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(0)
	assert.False(t, pool.IsEnabled())
	var order []int
	pool.ForEach(4, func(ii int) { order = append(order, ii) })
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

func TestPool_Unlimited(t *testing.T) {
	pool := New()
	pool.SetMaxParallelism(-1)
	assert.Equal(t, -1, pool.MaxParallelism())

	// All tasks must be running at the same time for the barrier to be released.
	const numTasks = 8
	var barrier sync.WaitGroup
	barrier.Add(numTasks)
	var count atomic.Int32
	done := make(chan struct{})
	go func() {
		pool.ForEach(numTasks, func(int) {
			barrier.Done()
			barrier.Wait()
			count.Add(1)
		})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout: tasks didn't run concurrently")
	}
	assert.Equal(t, int32(numTasks), count.Load())
}
