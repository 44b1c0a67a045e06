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
	"net/http"

	"github.com/candango/chainok/logger"
)

// ScheduleResult is what a Handler returns to the dispatcher. A handler
// does not process the request on the dispatcher's stack; it schedules
// the actual processing somewhere else (a goroutine, a worker pool, a
// remote call) and reports whether that scheduling happened.
type ScheduleResult int

const (
	// ScheduleOk means the handler accepted the controller and the
	// processing of the request was scheduled. The handler is now
	// responsible for eventually answering the request or re-entering
	// the chain with Next.
	ScheduleOk ScheduleResult = iota

	// ScheduleFailure means the handler could not even begin the
	// processing. There is no additional information about the failure
	// and the dispatcher answers the request with
	// StatusSchedulingFailure.
	ScheduleFailure
)

func (r ScheduleResult) String() string {
	switch r {
	case ScheduleOk:
		return "ok"
	case ScheduleFailure:
		return "failure"
	}
	return "unknown"
}

// Fallback status codes used by the dispatcher. They are part of the
// contract with the transport layer and never change with the chain
// being served.
const (
	// StatusUnclaimed is sent when the chain is exhausted and no
	// handler claimed the request.
	StatusUnclaimed = http.StatusNotFound

	// StatusSchedulingFailure is sent when a handler returned
	// ScheduleFailure.
	StatusSchedulingFailure = http.StatusInternalServerError
)

// NoExtra is the default per-request extra data shape. It carries
// nothing.
type NoExtra struct{}

// Handler is a unit of request processing logic. It takes ownership of
// the controller: after a handler returns ScheduleOk nobody else may
// advance or answer that request until the handler either responds
// through the request handle or calls Next again.
type Handler[Extra any] func(c *Controller[Extra]) ScheduleResult

// Source is the boundary to the collaborator that built the handler
// chain. It only needs to answer "which handler occupies position i",
// and must answer it consistently once requests start flowing, since a
// Source is shared by every in-flight request of its server.
type Source[Extra any] interface {
	HandlerAt(i int) (Handler[Extra], bool)
}

// Sequence is a bare slice view of a handler chain, enough to serve as
// a Source for the pipeline and for tests.
type Sequence[Extra any] []Handler[Extra]

// HandlerAt returns the handler at position i, or false when i runs
// past the end of the sequence.
func (s Sequence[Extra]) HandlerAt(i int) (Handler[Extra], bool) {
	if i < 0 || i >= len(s) {
		return nil, false
	}
	return s[i], true
}

// NextStep is the outcome of asking a controller for its next handler.
// It is a closed sum over two cases: "here is the next handler" and
// "no more handlers".
type NextStep[Extra any] struct {
	handler Handler[Extra]
}

// Handler returns the yielded handler, or false when the chain is
// exhausted.
func (s NextStep[Extra]) Handler() (Handler[Extra], bool) {
	if s.handler == nil {
		return nil, false
	}
	return s.handler, true
}

// NoMoreHandlers reports whether the chain ran out of handlers.
func (s NextStep[Extra]) NoMoreHandlers() bool {
	return s.handler == nil
}

// Next consumes the controller and drives the chain one step. It asks
// the controller for the next handler and either transfers ownership of
// the controller to that handler or, when none remains, answers the
// request with StatusUnclaimed. When the invoked handler reports
// ScheduleFailure the request is answered with StatusSchedulingFailure.
//
// Every dispatch ends in exactly one of: the request was claimed by a
// handler, a scheduling failure response was sent, or an unclaimed
// response was sent. A handler that accepted the controller may call
// Next with it again later, from any goroutine, to hand the request to
// the rest of the chain.
func Next[Extra any](c *Controller[Extra]) {
	if c == nil {
		panic("chainok: nil controller passed to Next")
	}
	if c.finished.Load() {
		panic("chainok: controller advanced after a terminal response")
	}
	step := c.OnNext()
	h, ok := step.Handler()
	if !ok {
		c.finished.Store(true)
		respond(c.Request(), StatusUnclaimed, c.log)
		return
	}
	// The handler may keep the controller forever, so everything
	// needed for the failure fallback must be captured before
	// ownership transfers.
	req, lg := c.Request(), c.log
	if h(c) == ScheduleFailure {
		c.finished.Store(true)
		respond(req, StatusSchedulingFailure, lg)
	}
}

// respond sends one of the fallback responses. Only the dispatcher
// produces these; user handlers answer through the request handle
// directly.
func respond(req RequestHandle, status int, lg logger.Logger) {
	if err := req.CreateResponse(status).Done(); err != nil {
		if lg == nil {
			lg = &logger.StandardLogger{}
		}
		lg.Errorf("chainok: sending the %d fallback response: %v",
			status, err)
	}
}
