package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/candango/chainok/logger"
	"github.com/candango/chainok/security"
)

const (
	// DefaultName is the default name for session cookies.
	DefaultName = "CHAINOKSESSID"
	// DefaultAgeLimit is the default sliding expiration of a session.
	DefaultAgeLimit = 30 * time.Minute
	// DefaultPurgeDuration is the default interval between purge
	// cycles.
	DefaultPurgeDuration = 2 * time.Minute
	// idSize is the length of generated session ids.
	idSize = 64
)

// EngineProperties contains the configuration of an Engine.
type EngineProperties struct {
	AgeLimit time.Duration
	Encoder
	logger.Logger
	Name          string
	PurgeDuration time.Duration
}

// Engine manages session lifecycle on top of a Store: id generation,
// encoding, sliding expiration and periodic purging.
type Engine struct {
	properties *EngineProperties
	store      Store
	stop       chan struct{}
	stopOnce   sync.Once
}

// EngineOption configures an Engine being created.
type EngineOption func(*Engine)

// WithProperties overrides the engine defaults with the non-zero
// fields of p.
func WithProperties(p *EngineProperties) EngineOption {
	return func(e *Engine) {
		if p.AgeLimit > 0 {
			e.properties.AgeLimit = p.AgeLimit
		}
		if p.Encoder != nil {
			e.properties.Encoder = p.Encoder
		}
		if p.Logger != nil {
			e.properties.Logger = p.Logger
		}
		if p.Name != "" {
			e.properties.Name = p.Name
		}
		if p.PurgeDuration > 0 {
			e.properties.PurgeDuration = p.PurgeDuration
		}
	}
}

// NewEngine creates a session engine over the given store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		properties: &EngineProperties{
			AgeLimit:      DefaultAgeLimit,
			Encoder:       &JsonEncoder{},
			Logger:        &logger.StandardLogger{},
			Name:          DefaultName,
			PurgeDuration: DefaultPurgeDuration,
		},
		store: store,
		stop:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Properties returns the engine configuration.
func (e *Engine) Properties() *EngineProperties {
	return e.properties
}

// Name returns the session cookie name used by the engine.
func (e *Engine) Name() string {
	return e.properties.Name
}

// NewId generates a new unique session id.
func (e *Engine) NewId() string {
	return security.RandomString(idSize)
}

// Start initializes the store and launches the purge cycle.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Start(ctx); err != nil {
		return err
	}
	go func() {
		ticker := time.NewTicker(e.properties.PurgeDuration)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := e.Purge(context.Background()); err != nil {
					e.properties.Errorf("session purge: %v", err)
				}
			case <-e.stop:
				return
			}
		}
	}()
	return nil
}

// Stop ends the purge cycle and tears the store down.
func (e *Engine) Stop(ctx context.Context) error {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
	return e.store.Stop(ctx)
}

// Purge removes expired sessions from the store.
func (e *Engine) Purge(ctx context.Context) error {
	return e.store.Purge(ctx, e.properties.AgeLimit)
}

// SessionExists checks if a session with the given id exists.
func (e *Engine) SessionExists(ctx context.Context,
	id string) (bool, error) {
	return e.store.Exists(ctx, id)
}

// GetSession retrieves the session identified by id, creating an empty
// one when it does not exist yet. Retrieval renews the session's age.
func (e *Engine) GetSession(ctx context.Context,
	id string) (Session, error) {
	data := map[string]any{}
	raw, err := e.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		encoded, err := e.properties.Encode(data)
		if err != nil {
			return Session{}, err
		}
		if err := e.store.Set(ctx, id, encoded); err != nil {
			return Session{}, err
		}
		return Session{Id: id, Data: data}, nil
	}
	if err != nil {
		return Session{}, err
	}
	if err := e.properties.Decode(raw, &data); err != nil {
		return Session{}, err
	}
	if err := e.store.Touch(ctx, id); err != nil {
		return Session{}, err
	}
	return Session{Id: id, Data: data}, nil
}

// SaveSession persists the session data for the given id.
func (e *Engine) SaveSession(ctx context.Context, id string,
	s Session) error {
	encoded, err := e.properties.Encode(s.Data)
	if err != nil {
		return err
	}
	return e.store.Set(ctx, id, encoded)
}
