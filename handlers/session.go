package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/candango/chainok"
	"github.com/candango/chainok/session"
)

const saveTimeout = 5 * time.Second

func newCookie(name string, value string, age time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
		HttpOnly: false,
		Secure:   false,
	}
}

// Sessioned loads the request's session off the transport goroutine, a
// store round trip being exactly the kind of work the chain defers,
// and hands the request to the rest of the chain once the session is
// attached to the per-request extra data through put. A session that
// changed by the time the request is answered is saved back to the
// engine.
func Sessioned[Extra any](eng *session.Engine,
	put func(extra *Extra, s *session.Session)) chainok.Handler[Extra] {
	return func(c *chainok.Controller[Extra]) chainok.ScheduleResult {
		ex, ok := c.Request().(*chainok.Exchange)
		if !ok {
			chainok.Next(c)
			return chainok.ScheduleOk
		}
		go func() {
			r := ex.Request()
			ctx := r.Context()
			id := ""
			if cookie, err := r.Cookie(eng.Name()); err == nil {
				id = cookie.Value
			}
			if id != "" {
				known, err := eng.SessionExists(ctx, id)
				if err != nil || !known {
					id = ""
				}
			}
			if id == "" {
				id = eng.NewId()
				cookie := newCookie(eng.Name(), id, time.Hour)
				// Headers stay open for decoration until the terminal
				// response is written.
				ex.Header().Add("Set-Cookie", cookie.String())
			}
			s, err := eng.GetSession(ctx, id)
			if err != nil {
				eng.Properties().Errorf("loading session %s: %v", id, err)
				_ = ex.CreateResponse(
					http.StatusInternalServerError).Done()
				return
			}
			put(c.Extra(), &s)
			chainok.Next(c)
			select {
			case <-ex.Done():
				if !s.Changed {
					return
				}
				saveCtx, cancel := context.WithTimeout(
					context.Background(), saveTimeout)
				defer cancel()
				if err := eng.SaveSession(saveCtx, s.Id, s); err != nil {
					eng.Properties().Errorf("saving session %s: %v",
						s.Id, err)
				}
			case <-ctx.Done():
			}
		}()
		return chainok.ScheduleOk
	}
}
