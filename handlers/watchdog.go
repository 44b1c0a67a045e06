package handlers

import (
	"net/http"
	"time"

	"github.com/candango/chainok"
)

// Watchdog guards the rest of the chain with a liveness deadline: when
// nothing answered the request within d it responds with a 503 itself.
// A chain has no way to tell that a handler which accepted a request
// will ever finish it, so deployments put a Watchdog in front of
// handlers they do not trust with that. The real response racing the
// deadline is safe, the first terminal response wins and the loser is
// discarded.
func Watchdog[Extra any](d time.Duration) chainok.Handler[Extra] {
	return func(c *chainok.Controller[Extra]) chainok.ScheduleResult {
		if ex, ok := c.Request().(*chainok.Exchange); ok {
			timer := time.AfterFunc(d, func() {
				_ = ex.CreateResponse(
					http.StatusServiceUnavailable).Done()
			})
			go func() {
				<-ex.Done()
				timer.Stop()
			}()
		}
		chainok.Next(c)
		return chainok.ScheduleOk
	}
}
