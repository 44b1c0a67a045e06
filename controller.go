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
	"sync/atomic"

	"github.com/candango/chainok/logger"
)

// RequestHandle is the transport layer's per-request capability. The
// chain never parses, buffers or times anything; it only needs to be
// able to start a terminal response on the two fallback paths. The
// handle stays valid for the whole life of the request, across any
// number of ownership transfers of its controller.
type RequestHandle interface {
	// CreateResponse starts a response with the given status code.
	CreateResponse(status int) ResponseBuilder
}

// ResponseBuilder assembles a terminal response. Done finishes the
// request; for any one request Done succeeds exactly once, later calls
// report that a response was already sent.
type ResponseBuilder interface {
	WithHeader(name, value string) ResponseBuilder
	WithBody(body []byte) ResponseBuilder
	AppendBody(body []byte) ResponseBuilder
	Done() error
}

// Controller is the per-request cursor over a handler chain. There is
// exactly one live controller per request and holding it is the
// exclusive right to decide what happens to that request next: advance
// the chain with Next, or answer through the request handle. The
// controller is created when a request enters the chain and is passed
// by ownership, never copied; handing it to a handler revokes the
// caller's right to touch the request.
//
// Go cannot invalidate the caller's pointer on transfer the way a
// move-only type would, so the discipline is enforced where it can be:
// advancing a controller after the dispatcher already sent a terminal
// response panics.
type Controller[Extra any] struct {
	req      RequestHandle
	src      Source[Extra]
	extra    Extra
	pos      int
	log      logger.Logger
	finished atomic.Bool
}

// NewController creates the controller for a request entering the
// chain. The extra value is the per-request data fixed by the chain's
// Extra type parameter; use NoExtra{} when the chain carries none.
func NewController[Extra any](req RequestHandle, src Source[Extra],
	extra Extra) *Controller[Extra] {
	if req == nil {
		panic("chainok: nil request handle passed to NewController")
	}
	if src == nil {
		panic("chainok: nil source passed to NewController")
	}
	return &Controller[Extra]{
		req:   req,
		src:   src,
		extra: extra,
	}
}

// WithLogger sets the logger used when a fallback response cannot be
// delivered.
func (c *Controller[Extra]) WithLogger(l logger.Logger) *Controller[Extra] {
	c.log = l
	return c
}

// Request returns the request handle. It may be called any number of
// times while the controller is alive. The dispatcher captures it
// before invoking a handler, since the handler may keep the controller
// permanently.
func (c *Controller[Extra]) Request() RequestHandle {
	return c.req
}

// Extra returns the per-request extra data carried through the chain.
// The pointer stays valid after the controller is handed off, so a
// handler may capture it before delegating.
func (c *Controller[Extra]) Extra() *Extra {
	return &c.extra
}

// OnNext advances the cursor and returns the next step. Repeated
// traversal of the same source yields handlers in the same order; the
// only side effect is the cursor bookkeeping. OnNext is meant to be
// called by the dispatcher, from whichever goroutine currently owns
// the controller.
func (c *Controller[Extra]) OnNext() NextStep[Extra] {
	h, ok := c.src.HandlerAt(c.pos)
	if !ok {
		return NextStep[Extra]{}
	}
	c.pos++
	return NextStep[Extra]{handler: h}
}
