package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ExecutesEveryTaskExactlyOnce(t *testing.T) {
	var count int64
	tasks := make([]func(), 50)
	for i := range tasks {
		tasks[i] = func() { atomic.AddInt64(&count, 1) }
	}

	New(4).Run(tasks)

	assert.Equal(t, int64(50), count)
}

func TestRun_EmptyTaskListReturnsImmediately(t *testing.T) {
	New(4).Run(nil)
}

func TestRun_BoundsConcurrency(t *testing.T) {
	var active, maxActive int64
	tasks := make([]func(), 20)
	for i := range tasks {
		tasks[i] = func() {
			cur := atomic.AddInt64(&active, 1)
			for {
				m := atomic.LoadInt64(&maxActive)
				if cur <= m || atomic.CompareAndSwapInt64(&maxActive, m, cur) {
					break
				}
			}
			atomic.AddInt64(&active, -1)
		}
	}

	New(3).Run(tasks)

	assert.LessOrEqual(t, maxActive, int64(3))
}
