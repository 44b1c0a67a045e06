package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a missing session", func(t *testing.T) {
		store := NewMemoryStore()
		engine := NewEngine(store)
		engine.Start(ctx)
		defer engine.Stop(ctx)

		s, err := engine.GetSession(ctx, "nonexistent")
		assert.NoError(t, err)
		assert.Empty(t, s.Data)

		ok, err := engine.SessionExists(ctx, "nonexistent")
		assert.NoError(t, err)
		assert.True(t, ok, "GetSession should have created the entry")
	})

	t.Run("Saves and retrieves a session", func(t *testing.T) {
		store := NewMemoryStore()
		engine := NewEngine(store)
		engine.Start(ctx)
		defer engine.Stop(ctx)

		id := engine.NewId()
		s := Session{Id: id, Data: map[string]any{"key": "val"}}
		assert.NoError(t, engine.SaveSession(ctx, id, s))

		retrieved, err := engine.GetSession(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, s.Data, retrieved.Data)
	})

	t.Run("Retrieval slides the expiration", func(t *testing.T) {
		store := NewMemoryStore()
		engine := NewEngine(store, WithProperties(&EngineProperties{
			AgeLimit: 30 * time.Millisecond,
		}))
		engine.Start(ctx)
		defer engine.Stop(ctx)

		id := engine.NewId()
		s := Session{Id: id, Data: map[string]any{"key": "val"}}
		assert.NoError(t, engine.SaveSession(ctx, id, s))

		time.Sleep(20 * time.Millisecond)
		_, err := engine.GetSession(ctx, id)
		assert.NoError(t, err)

		time.Sleep(20 * time.Millisecond)
		assert.NoError(t, engine.Purge(ctx))

		ok, err := engine.SessionExists(ctx, id)
		assert.NoError(t, err)
		assert.True(t, ok, "the session should still exist, retrieval "+
			"renewed its age")
	})

	t.Run("Distinct generated ids", func(t *testing.T) {
		engine := NewEngine(NewMemoryStore())
		assert.NotEqual(t, engine.NewId(), engine.NewId())
		assert.Len(t, engine.NewId(), 64)
	})

	t.Run("Properties override defaults", func(t *testing.T) {
		engine := NewEngine(NewMemoryStore(), WithProperties(
			&EngineProperties{
				AgeLimit: 7 * time.Second,
				Name:     "TESTSESSID",
			},
		))
		assert.Equal(t, 7*time.Second, engine.Properties().AgeLimit)
		assert.Equal(t, "TESTSESSID", engine.Name())
		assert.Equal(t, DefaultPurgeDuration,
			engine.Properties().PurgeDuration)
	})
}
