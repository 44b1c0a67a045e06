package testrunner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// HttpTestRunner is a runner that facilitates testing of HTTP
// handlers, chain pipelines included. It spins an httptest server per
// run around the configured handler and performs a real request
// against it, so asynchronous handlers answering from other goroutines
// are exercised over an actual connection.
type HttpTestRunner struct {
	body    io.Reader
	cookies []*http.Cookie
	handler http.Handler
	header  http.Header
	method  string
	path    string
	t       *testing.T
	values  url.Values
}

// NewHttpTestRunner creates a new HttpTestRunner with empty headers,
// GET as the method and the root path.
func NewHttpTestRunner(t *testing.T) *HttpTestRunner {
	return &HttpTestRunner{
		header: http.Header{},
		method: http.MethodGet,
		path:   "/",
		t:      t,
		values: url.Values{},
	}
}

// WithHandler sets the handler to be executed by the runner.
func (r *HttpTestRunner) WithHandler(handler http.Handler) *HttpTestRunner {
	r.handler = handler
	return r
}

// WithHandlerFunc sets a handler function to be executed by the
// runner.
func (r *HttpTestRunner) WithHandlerFunc(
	handlerFunc func(http.ResponseWriter, *http.Request)) *HttpTestRunner {
	r.handler = http.HandlerFunc(handlerFunc)
	return r
}

// WithCookie adds a cookie to be sent with the request.
func (r *HttpTestRunner) WithCookie(cookie *http.Cookie) *HttpTestRunner {
	r.cookies = append(r.cookies, cookie)
	return r
}

// WithHeader adds a key/value pair to the request header.
func (r *HttpTestRunner) WithHeader(key string, value string) *HttpTestRunner {
	r.header.Add(key, value)
	return r
}

// WithPath sets the path to be requested by the runner.
func (r *HttpTestRunner) WithPath(path string) *HttpTestRunner {
	r.path = path
	return r
}

// WithBody sets the request body using an io.Reader.
func (r *HttpTestRunner) WithBody(body io.Reader) *HttpTestRunner {
	r.body = body
	return r
}

// WithJsonBody sets the request body marshalling typedBody to JSON.
func (r *HttpTestRunner) WithJsonBody(typedBody any) *HttpTestRunner {
	marshaled, err := json.Marshal(typedBody)
	if err != nil {
		r.t.Fatal(err)
	}
	return r.WithBody(bytes.NewReader(marshaled))
}

// WithStringBody sets the request body using a string.
func (r *HttpTestRunner) WithStringBody(stringBody string) *HttpTestRunner {
	return r.WithBody(bytes.NewReader([]byte(stringBody)))
}

// WithMethod sets the method to be used by the runner.
func (r *HttpTestRunner) WithMethod(method string) *HttpTestRunner {
	r.method = strings.ToUpper(method)
	return r
}

// WithValues sets the url values to be used by the runner.
func (r *HttpTestRunner) WithValues(values url.Values) *HttpTestRunner {
	r.values = values
	return r
}

// Run performs the configured request and returns the response.
func (r *HttpTestRunner) Run() (*http.Response, error) {
	if r.handler == nil {
		return nil, fmt.Errorf("testrunner: no handler to run against")
	}
	s := httptest.NewServer(r.handler)
	defer s.Close()
	path := r.path
	if len(r.values) > 0 {
		path = path + "?" + r.values.Encode()
	}
	req, err := http.NewRequest(r.method, s.URL+path, r.body)
	if err != nil {
		r.t.Fatal(err)
	}
	req.Header = r.header.Clone()
	for _, cookie := range r.cookies {
		req.AddCookie(cookie)
	}
	return s.Client().Do(req)
}

// Get executes an HTTP GET request using HttpTestRunner.Run.
func (r *HttpTestRunner) Get() (*http.Response, error) {
	return r.WithMethod(http.MethodGet).Run()
}

// Head executes an HTTP HEAD request using HttpTestRunner.Run.
func (r *HttpTestRunner) Head() (*http.Response, error) {
	return r.WithMethod(http.MethodHead).Run()
}

// Post executes an HTTP POST request using HttpTestRunner.Run.
func (r *HttpTestRunner) Post() (*http.Response, error) {
	return r.WithMethod(http.MethodPost).Run()
}

// Put executes an HTTP PUT request using HttpTestRunner.Run.
func (r *HttpTestRunner) Put() (*http.Response, error) {
	return r.WithMethod(http.MethodPut).Run()
}

// Delete executes an HTTP DELETE request using HttpTestRunner.Run.
func (r *HttpTestRunner) Delete() (*http.Response, error) {
	return r.WithMethod(http.MethodDelete).Run()
}

// BodyAsString returns the body of a response as string.
func BodyAsString(t *testing.T, res *http.Response) string {
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Error(err)
	}
	return string(body)
}

// BodyAsJson unmarshals the body of a response into jsonBody.
func BodyAsJson(t *testing.T, res *http.Response, jsonBody any) {
	b, err := io.ReadAll(res.Body)
	if err != nil {
		t.Error(err)
	}
	if err = json.Unmarshal(b, jsonBody); err != nil {
		t.Error(err)
	}
}

// SessionCookie finds the cookie with the given name in the response,
// or nil when it was not set.
func SessionCookie(res *http.Response, name string) *http.Cookie {
	for _, cookie := range res.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}
