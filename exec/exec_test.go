package exec_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dolthub/nose-advisor/exec"
)

func TestNilExecutorGroupIsUnbounded(t *testing.T) {
	var e *exec.Executor
	g, ctx := e.Group(context.Background())
	require.NotNil(t, g)
	require.NotNil(t, ctx)

	var n int32
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			atomic.AddInt32(&n, 1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 8, n)
}

func TestExecutorGroupAppliesLimit(t *testing.T) {
	e := &exec.Executor{Limit: 2}
	g, _ := e.Group(context.Background())

	var active, maxActive int32
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			cur := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if cur <= m || atomic.CompareAndSwapInt32(&maxActive, m, cur) {
					break
				}
			}
			atomic.AddInt32(&active, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.LessOrEqual(t, int(maxActive), 2)
}
