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
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/candango/chainok/logger"
)

// DefaultShutdownTimeout bounds how long Run waits for in-flight
// requests when the server is shutting down.
const DefaultShutdownTimeout = 30 * time.Second

// newSignalChan creates a channel that listens for the specified
// signals, or the default termination signals if none are provided.
// This function is used internally by [GracefulServer.Run].
func newSignalChan(sig ...os.Signal) chan os.Signal {
	if len(sig) == 0 {
		sig = []os.Signal{
			syscall.SIGINT,
			syscall.SIGHUP,
			syscall.SIGQUIT,
			syscall.SIGTERM,
		}
	}
	c := make(chan os.Signal, 1)
	signal.Notify(c, sig...)
	return c
}

// GracefulServer combines an HTTP server, usually serving a Pipeline,
// with signal driven graceful shutdown.
type GracefulServer struct {
	Name string
	*http.Server
	Logger          logger.Logger
	ShutdownTimeout time.Duration
}

// NewGracefulServer creates a named graceful server around srv.
func NewGracefulServer(srv *http.Server, name string) *GracefulServer {
	return &GracefulServer{
		Name:            name,
		Server:          srv,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// WithLogger sets the logger used by Run.
func (s *GracefulServer) WithLogger(l logger.Logger) *GracefulServer {
	s.Logger = l
	return s
}

// Run starts the HTTP server in a goroutine and listens for
// termination signals to gracefully shut it down. It takes optional
// signals to listen for; if none are provided it uses the default
// termination signals. The returned channel is closed once shutdown
// completed, so callers block with <-s.Run().
func (s *GracefulServer) Run(sig ...os.Signal) chan struct{} {
	lg := s.Logger
	if lg == nil {
		lg = &logger.StandardLogger{}
	}

	go func() {
		if err := s.ListenAndServe(); err != http.ErrServerClosed {
			lg.Fatalf("server %s HTTP ListenAndServe error: %v",
				s.Name, err)
		}
	}()
	lg.Printf("server %s started at %s", s.Name, s.Addr)

	c := newSignalChan(sig...)
	done := make(chan struct{})
	go func() {
		defer close(done)
		received := <-c
		signal.Stop(c)
		lg.Printf("shutting down %s due to signal %s", s.Name, received)

		timeout := s.ShutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			lg.Errorf("server %s shutdown failed: %v", s.Name, err)
			return
		}
		lg.Printf("%s shutdown gracefully", s.Name)
	}()

	return done
}
