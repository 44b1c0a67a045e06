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
	"errors"
	"net/http"
)

// ErrAlreadyResponded is returned by ResponseBuilder.Done when another
// terminal response was already sent for the same request.
var ErrAlreadyResponded = errors.New(
	"chainok: a terminal response was already sent for this request")

// httpResponse buffers a response until Done. Nothing touches the
// response writer before that, so losing the race against another
// builder leaves no trace on the wire.
type httpResponse struct {
	ex     *Exchange
	status int
	header http.Header
	body   []byte
}

func (r *httpResponse) WithHeader(name, value string) ResponseBuilder {
	r.header.Add(name, value)
	return r
}

func (r *httpResponse) WithBody(body []byte) ResponseBuilder {
	r.body = append(r.body[:0], body...)
	return r
}

func (r *httpResponse) AppendBody(body []byte) ResponseBuilder {
	r.body = append(r.body, body...)
	return r
}

// Done writes the response and finishes the request. Exactly one Done
// succeeds per request; every later call returns ErrAlreadyResponded
// without writing anything.
func (r *httpResponse) Done() error {
	err := ErrAlreadyResponded
	r.ex.once.Do(func() {
		h := r.ex.w.Header()
		for name, values := range r.header {
			for _, value := range values {
				h.Add(name, value)
			}
		}
		r.ex.w.WriteHeader(r.status)
		err = nil
		if len(r.body) > 0 {
			_, err = r.ex.w.Write(r.body)
		}
		r.ex.status.Store(int32(r.status))
		close(r.ex.done)
	})
	return err
}
