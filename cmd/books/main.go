package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/candango/chainok"
	"github.com/candango/chainok/handlers"
	"github.com/candango/chainok/logger"
	"github.com/candango/chainok/session"
	kitlog "github.com/go-kit/log"
	"github.com/redis/go-redis/v9"
)

// requestData is the extra data carried by every request of the books
// chain.
type requestData struct {
	Sess *session.Session
}

type book struct {
	Author string
	Title  string
}

type bookShelf struct {
	mu    sync.RWMutex
	books []book
}

// show answers with the book collection and the visitor's running
// visit count. It runs on the worker pool, owning the controller.
func (s *bookShelf) show(c *chainok.Controller[requestData]) {
	ex := c.Request().(*chainok.Exchange)
	resp := ex.CreateResponse(http.StatusOK).
		WithHeader("Content-Type", "text/plain; charset=utf-8")

	s.mu.RLock()
	resp.AppendBody([]byte(fmt.Sprintf(
		"Book collection (book count: %d)\n", len(s.books))))
	for i, b := range s.books {
		resp.AppendBody([]byte(fmt.Sprintf(
			"%d. %s [%s]\n", i+1, b.Title, b.Author)))
	}
	s.mu.RUnlock()

	if sess := c.Extra().Sess; sess != nil {
		count := 0
		if v, _ := sess.Get("count"); v != nil {
			count = int(v.(float64))
		}
		count++
		sess.Set("count", count)
		resp.AppendBody([]byte(fmt.Sprintf("Your visit number: %d\n", count)))
	}

	if err := resp.Done(); err != nil {
		// Probably the watchdog beat us to it.
		return
	}
}

func main() {
	addr := flag.String("addr", ":8887", "address to listen on")
	redisAddr := flag.String("redis", "",
		"redis address for shared sessions, empty uses in-memory sessions")
	flag.Parse()

	lg := logger.Kit(kitlog.With(
		kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)),
		"ts", kitlog.DefaultTimestampUTC))

	ctx := context.Background()

	var store session.Store = session.NewMemoryStore()
	if *redisAddr != "" {
		store = session.NewRedisStore(&redis.Options{Addr: *redisAddr}).
			WithPrefix("books:session")
	}
	eng := session.NewEngine(store, session.WithProperties(
		&session.EngineProperties{
			AgeLimit: 30 * time.Minute,
			Logger:   lg,
			Name:     "BOOKSSESSID",
		},
	))
	if err := eng.Start(ctx); err != nil {
		lg.Fatalf("starting session engine: %v", err)
	}
	defer eng.Stop(ctx)

	pool := handlers.NewPool(4, 64)
	pool.Start(ctx)
	defer pool.Stop(ctx)

	shelf := &bookShelf{books: []book{
		{"Agatha Christie", "Murder on the Orient Express"},
		{"Ray Bradbury", "Dandelion Wine"},
		{"Stanislaw Lem", "Solaris"},
	}}

	chain := chainok.Sequence[requestData]{
		handlers.Watchdog[requestData](10 * time.Second),
		handlers.Sessioned(eng,
			func(d *requestData, s *session.Session) { d.Sess = s }),
		handlers.ExactPath("/books", handlers.Scheduled(pool, shelf.show)),
	}

	srv := &http.Server{
		Addr:    *addr,
		Handler: chainok.NewPipeline[requestData](chain).WithLogger(lg),
	}
	<-chainok.NewGracefulServer(srv, "books-server").WithLogger(lg).Run()
}
