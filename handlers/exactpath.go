package handlers

import (
	"github.com/candango/chainok"
)

// ExactPath claims requests whose URL path matches path exactly with
// h, and lets every other request continue down the chain.
func ExactPath[Extra any](path string,
	h chainok.Handler[Extra]) chainok.Handler[Extra] {
	return func(c *chainok.Controller[Extra]) chainok.ScheduleResult {
		ex, ok := c.Request().(*chainok.Exchange)
		if !ok || ex.Request().URL.Path != path {
			chainok.Next(c)
			return chainok.ScheduleOk
		}
		return h(c)
	}
}
