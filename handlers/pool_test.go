package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/candango/chainok"
	"github.com/candango/chainok/testrunner"
	"github.com/stretchr/testify/assert"
)

func TestPool(t *testing.T) {
	ctx := context.Background()

	t.Run("Runs submitted work", func(t *testing.T) {
		pool := NewPool(2, 8)
		assert.NoError(t, pool.Start(ctx))

		ran := make(chan struct{})
		assert.NoError(t, pool.Submit(func() { close(ran) }))
		select {
		case <-ran:
		case <-time.After(time.Second):
			t.Fatal("the pool never ran the work")
		}

		assert.NoError(t, pool.Stop(ctx))
	})

	t.Run("Full queue fails fast", func(t *testing.T) {
		// No workers started, the queue fills up and stays full.
		pool := NewPool(1, 1)

		assert.NoError(t, pool.Submit(func() {}))
		assert.ErrorIs(t, pool.Submit(func() {}), ErrQueueFull)
	})

	t.Run("Stopped pool rejects work", func(t *testing.T) {
		pool := NewPool(1, 1)
		assert.NoError(t, pool.Start(ctx))
		assert.NoError(t, pool.Stop(ctx))

		assert.ErrorIs(t, pool.Submit(func() {}), ErrPoolStopped)
		// Stopping twice is fine.
		assert.NoError(t, pool.Stop(ctx))
	})
}

func TestScheduled(t *testing.T) {
	ctx := context.Background()

	t.Run("Work answers from the pool", func(t *testing.T) {
		pool := NewPool(2, 8)
		assert.NoError(t, pool.Start(ctx))
		defer pool.Stop(ctx)

		chain := chainok.Sequence[chainok.NoExtra]{
			Scheduled(pool, func(c *chainok.Controller[chainok.NoExtra]) {
				ex := c.Request().(*chainok.Exchange)
				ex.CreateResponse(http.StatusOK).
					WithBody([]byte("from the pool")).Done()
			}),
		}
		runner := testrunner.NewHttpTestRunner(t).
			WithHandler(chainok.NewPipeline[chainok.NoExtra](chain))

		res, err := runner.Get()
		if err != nil {
			t.Error(err)
		}
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "from the pool", testrunner.BodyAsString(t, res))
	})

	t.Run("Unschedulable work fails the request", func(t *testing.T) {
		pool := NewPool(1, 1)
		assert.NoError(t, pool.Start(ctx))
		assert.NoError(t, pool.Stop(ctx))

		chain := chainok.Sequence[chainok.NoExtra]{
			Scheduled(pool, func(c *chainok.Controller[chainok.NoExtra]) {
				t.Error("work ran on a stopped pool")
			}),
		}
		runner := testrunner.NewHttpTestRunner(t).
			WithHandler(chainok.NewPipeline[chainok.NoExtra](chain))

		res, err := runner.Get()
		if err != nil {
			t.Error(err)
		}
		assert.Equal(t, chainok.StatusSchedulingFailure, res.StatusCode)
	})
}
