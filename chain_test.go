// Copyright 2024-2025 Flavio Garcia
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chainok

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeHandle records every terminal response sent through it.
type fakeHandle struct {
	mu       sync.Mutex
	statuses []int
}

func (h *fakeHandle) CreateResponse(status int) ResponseBuilder {
	return &fakeResponse{handle: h, status: status}
}

func (h *fakeHandle) sent() []int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]int(nil), h.statuses...)
}

type fakeResponse struct {
	handle *fakeHandle
	status int
	body   []byte
}

func (r *fakeResponse) WithHeader(name, value string) ResponseBuilder {
	return r
}

func (r *fakeResponse) WithBody(body []byte) ResponseBuilder {
	r.body = append(r.body[:0], body...)
	return r
}

func (r *fakeResponse) AppendBody(body []byte) ResponseBuilder {
	r.body = append(r.body, body...)
	return r
}

func (r *fakeResponse) Done() error {
	r.handle.mu.Lock()
	defer r.handle.mu.Unlock()
	r.handle.statuses = append(r.handle.statuses, r.status)
	return nil
}

func TestEmptyChain(t *testing.T) {
	handle := &fakeHandle{}

	Next(NewController(RequestHandle(handle), Sequence[NoExtra]{}, NoExtra{}))

	assert.Equal(t, []int{StatusUnclaimed}, handle.sent())
}

func TestFirstHandlerFailure(t *testing.T) {
	handle := &fakeHandle{}
	first := 0
	second := 0
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			first++
			return ScheduleFailure
		},
		func(c *Controller[NoExtra]) ScheduleResult {
			second++
			return ScheduleOk
		},
	}

	Next(NewController(RequestHandle(handle), seq, NoExtra{}))

	assert.Equal(t, []int{StatusSchedulingFailure}, handle.sent())
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)
}

func TestHandlerClaims(t *testing.T) {
	handle := &fakeHandle{}
	second := 0
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			c.Request().CreateResponse(200).Done()
			return ScheduleOk
		},
		func(c *Controller[NoExtra]) ScheduleResult {
			second++
			return ScheduleOk
		},
	}

	Next(NewController(RequestHandle(handle), seq, NoExtra{}))

	assert.Equal(t, []int{200}, handle.sent())
	assert.Equal(t, 0, second, "the request was claimed, the chain "+
		"must not move past the claiming handler")
}

func TestClaimWithoutResponse(t *testing.T) {
	handle := &fakeHandle{}
	second := 0
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			// Accepts the request and never answers nor delegates.
			return ScheduleOk
		},
		func(c *Controller[NoExtra]) ScheduleResult {
			second++
			return ScheduleOk
		},
	}

	Next(NewController(RequestHandle(handle), seq, NoExtra{}))

	assert.Empty(t, handle.sent())
	assert.Equal(t, 0, second)
}

func TestAsyncRedispatch(t *testing.T) {
	handle := &fakeHandle{}
	done := make(chan struct{})
	var order []string
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			order = append(order, "first")
			go func() {
				time.Sleep(10 * time.Millisecond)
				Next(c)
			}()
			return ScheduleOk
		},
		func(c *Controller[NoExtra]) ScheduleResult {
			order = append(order, "second")
			c.Request().CreateResponse(200).Done()
			close(done)
			return ScheduleOk
		},
	}

	Next(NewController(RequestHandle(handle), seq, NoExtra{}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("the chain never reached the second handler")
	}
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, []int{200}, handle.sent())
}

func TestCapturedHandleSurvivesRedispatch(t *testing.T) {
	handle := &fakeHandle{}
	done := make(chan struct{})
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			go func() {
				time.Sleep(10 * time.Millisecond)
				Next(c)
				close(done)
			}()
			return ScheduleOk
		},
		func(c *Controller[NoExtra]) ScheduleResult {
			return ScheduleFailure
		},
	}

	Next(NewController(RequestHandle(handle), seq, NoExtra{}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("the re-dispatch never finished")
	}
	assert.Equal(t, []int{StatusSchedulingFailure}, handle.sent())
}

func TestDeterministicOrder(t *testing.T) {
	decliningChain := func(order *[]int) Sequence[NoExtra] {
		seq := Sequence[NoExtra]{}
		for i := 0; i < 3; i++ {
			i := i
			seq = append(seq, func(c *Controller[NoExtra]) ScheduleResult {
				*order = append(*order, i)
				Next(c)
				return ScheduleOk
			})
		}
		return seq
	}

	var first, second []int
	handleOne := &fakeHandle{}
	handleTwo := &fakeHandle{}

	Next(NewController(RequestHandle(handleOne),
		decliningChain(&first), NoExtra{}))
	Next(NewController(RequestHandle(handleTwo),
		decliningChain(&second), NoExtra{}))

	assert.Equal(t, []int{0, 1, 2}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, []int{StatusUnclaimed}, handleOne.sent())
	assert.Equal(t, []int{StatusUnclaimed}, handleTwo.sent())
}

func TestExtraDataTravelsWithTheRequest(t *testing.T) {
	type visits struct {
		Count int
	}
	handle := &fakeHandle{}
	seen := 0
	seq := Sequence[visits]{
		func(c *Controller[visits]) ScheduleResult {
			c.Extra().Count++
			Next(c)
			return ScheduleOk
		},
		func(c *Controller[visits]) ScheduleResult {
			seen = c.Extra().Count
			c.Request().CreateResponse(200).Done()
			return ScheduleOk
		},
	}

	Next(NewController(RequestHandle(handle), seq, visits{}))

	assert.Equal(t, 1, seen)
	assert.Equal(t, []int{200}, handle.sent())
}

func TestControllerMisuse(t *testing.T) {
	t.Run("Nil controller", func(t *testing.T) {
		assert.Panics(t, func() {
			Next[NoExtra](nil)
		})
	})

	t.Run("Nil request handle", func(t *testing.T) {
		assert.Panics(t, func() {
			NewController(nil, Sequence[NoExtra]{}, NoExtra{})
		})
	})

	t.Run("Nil source", func(t *testing.T) {
		assert.Panics(t, func() {
			NewController[NoExtra](RequestHandle(&fakeHandle{}), nil,
				NoExtra{})
		})
	})

	t.Run("Advance after terminal response", func(t *testing.T) {
		handle := &fakeHandle{}
		c := NewController(RequestHandle(handle), Sequence[NoExtra]{},
			NoExtra{})
		Next(c)
		assert.Equal(t, []int{StatusUnclaimed}, handle.sent())
		assert.Panics(t, func() {
			Next(c)
		})
	})
}

func TestSequenceHandlerAt(t *testing.T) {
	seq := Sequence[NoExtra]{
		func(c *Controller[NoExtra]) ScheduleResult {
			return ScheduleOk
		},
	}

	h, ok := seq.HandlerAt(0)
	assert.True(t, ok)
	assert.NotNil(t, h)

	_, ok = seq.HandlerAt(1)
	assert.False(t, ok)
	_, ok = seq.HandlerAt(-1)
	assert.False(t, ok)
}

func TestNextStep(t *testing.T) {
	empty := NextStep[NoExtra]{}
	assert.True(t, empty.NoMoreHandlers())
	_, ok := empty.Handler()
	assert.False(t, ok)

	step := NextStep[NoExtra]{
		handler: func(c *Controller[NoExtra]) ScheduleResult {
			return ScheduleOk
		},
	}
	assert.False(t, step.NoMoreHandlers())
	h, ok := step.Handler()
	assert.True(t, ok)
	assert.NotNil(t, h)
}

func TestScheduleResultString(t *testing.T) {
	assert.Equal(t, "ok", ScheduleOk.String())
	assert.Equal(t, "failure", ScheduleFailure.String())
	assert.Equal(t, "unknown", ScheduleResult(42).String())
}
