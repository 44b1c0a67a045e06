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
	"sync"
	"sync/atomic"
	"time"

	"github.com/candango/chainok/logger"
)

// Pipeline serves a handler chain over net/http. For every request it
// creates the Exchange and the Controller, enters the chain with Next
// and parks the transport goroutine until a terminal response is sent
// or the request context is cancelled. Handlers are free to finish the
// request from any goroutine in the meantime.
type Pipeline[Extra any] struct {
	// Source is the handler chain being served. It must not change
	// once the pipeline starts serving.
	Source Source[Extra]

	// NewExtra builds the per-request extra data. When nil each
	// request carries the zero value of Extra.
	NewExtra func(r *http.Request) Extra

	// Logger receives the per-request access log and delivery errors.
	Logger logger.Logger
}

// NewPipeline creates a pipeline serving the given chain.
func NewPipeline[Extra any](src Source[Extra]) *Pipeline[Extra] {
	if src == nil {
		panic("chainok: nil source passed to NewPipeline")
	}
	return &Pipeline[Extra]{Source: src}
}

// WithExtra sets the per-request extra data factory.
func (p *Pipeline[Extra]) WithExtra(
	f func(r *http.Request) Extra) *Pipeline[Extra] {
	p.NewExtra = f
	return p
}

// WithLogger sets the pipeline logger.
func (p *Pipeline[Extra]) WithLogger(l logger.Logger) *Pipeline[Extra] {
	p.Logger = l
	return p
}

func (p *Pipeline[Extra]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lg := p.Logger
	if lg == nil {
		lg = &logger.StandardLogger{}
	}
	ex := newExchange(w, r)
	var extra Extra
	if p.NewExtra != nil {
		extra = p.NewExtra(r)
	}
	c := NewController(RequestHandle(ex), p.Source, extra).WithLogger(lg)
	Next(c)
	select {
	case <-ex.Done():
	case <-r.Context().Done():
		// The client went away or the server is shutting down. The
		// exchange is closed so that a late handler cannot write to a
		// connection net/http already reclaimed.
		ex.abort()
		lg.Warnf("%s %s abandoned after %dus: %v", r.Method, r.URL.Path,
			time.Since(start).Microseconds(), r.Context().Err())
		return
	}
	status := ex.Status()
	elapsed := time.Since(start).Microseconds()
	switch {
	case status >= 500:
		lg.Errorf("%s %d %s %d", r.Method, status, r.URL.Path, elapsed)
	case status >= 400:
		lg.Warnf("%s %d %s %d", r.Method, status, r.URL.Path, elapsed)
	default:
		lg.Printf("%s %d %s %d", r.Method, status, r.URL.Path, elapsed)
	}
}

// Exchange is the RequestHandle implementation for net/http. It pairs
// the response writer with the parsed request and enforces the
// exactly-once terminal response at the wire: whichever builder calls
// Done first wins, every other one gets ErrAlreadyResponded.
type Exchange struct {
	w      http.ResponseWriter
	r      *http.Request
	done   chan struct{}
	once   sync.Once
	status atomic.Int32
}

func newExchange(w http.ResponseWriter, r *http.Request) *Exchange {
	return &Exchange{
		w:    w,
		r:    r,
		done: make(chan struct{}),
	}
}

// CreateResponse starts a terminal response with the given status.
func (e *Exchange) CreateResponse(status int) ResponseBuilder {
	return &httpResponse{
		ex:     e,
		status: status,
		header: http.Header{},
	}
}

// Request returns the parsed request being processed.
func (e *Exchange) Request() *http.Request {
	return e.r
}

// Header returns the response headers. Handlers that must decorate the
// response without owning it, like a session loader setting its cookie,
// write here before the terminal response is sent.
func (e *Exchange) Header() http.Header {
	return e.w.Header()
}

// Done returns a channel closed once the request got its terminal
// response, or the exchange was abandoned.
func (e *Exchange) Done() <-chan struct{} {
	return e.done
}

// Finished reports whether the request already got its terminal
// response.
func (e *Exchange) Finished() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Status returns the status code of the terminal response, or zero
// while the request is still in flight.
func (e *Exchange) Status() int {
	return int(e.status.Load())
}

// abort closes the exchange without writing anything. Consuming the
// once here guarantees a late Done never touches the response writer.
func (e *Exchange) abort() {
	e.once.Do(func() {
		e.status.Store(http.StatusServiceUnavailable)
		close(e.done)
	})
}
