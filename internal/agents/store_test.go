package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/tools"
	"helios/pkg/errors"
)

func testRegistry(t *testing.T, names ...string) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	for _, name := range names {
		require.NoError(t, r.Register(tools.New(name, "test tool "+name, "test", nil,
			func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return "ok", nil
			})))
	}
	return r
}

func testDefinition(name string, toolNames ...string) *Definition {
	return &Definition{
		Name:         name,
		Model:        "gpt-4o",
		SystemPrompt: "You are a market analyst.",
		ToolNames:    toolNames,
	}
}

func TestStore_Save(t *testing.T) {
	t.Run("upsert updates in place and keeps creation order", func(t *testing.T) {
		registry := testRegistry(t, "get_account", "get_clock")
		store := NewStore(registry, false)

		require.NoError(t, store.Save(testDefinition("momentum", "get_account")))
		require.NoError(t, store.Save(testDefinition("value", "get_clock")))

		updated := testDefinition("momentum", "get_account", "get_clock")
		require.NoError(t, store.Save(updated))

		defs := store.List()
		require.Len(t, defs, 2)
		assert.Equal(t, "momentum", defs[0].Name)
		assert.Equal(t, "value", defs[1].Name)
		assert.Len(t, defs[0].ToolNames, 2)
		assert.False(t, defs[0].CreatedAt.IsZero())
		assert.True(t, defs[0].UpdatedAt.After(defs[0].CreatedAt) || defs[0].UpdatedAt.Equal(defs[0].CreatedAt))
	})

	t.Run("reject duplicates policy", func(t *testing.T) {
		registry := testRegistry(t, "get_account")
		store := NewStore(registry, true)

		require.NoError(t, store.Save(testDefinition("momentum", "get_account")))
		err := store.Save(testDefinition("momentum", "get_account"))
		assert.ErrorIs(t, err, ErrAgentExists)
	})

	t.Run("unknown tool reference is rejected before storage", func(t *testing.T) {
		registry := testRegistry(t, "get_account")
		store := NewStore(registry, false)

		err := store.Save(testDefinition("momentum", "get_account", "no_such_tool"))
		require.Error(t, err)
		assert.ErrorIs(t, err, tools.ErrToolNotFound)

		_, err = store.Get("momentum")
		assert.ErrorIs(t, err, ErrAgentNotFound)
	})

	t.Run("disabled tool may still be referenced at save time", func(t *testing.T) {
		registry := testRegistry(t, "get_account")
		require.NoError(t, registry.SetEnabled("get_account", false))
		store := NewStore(registry, false)

		assert.NoError(t, store.Save(testDefinition("momentum", "get_account")))
	})

	t.Run("invalid definition", func(t *testing.T) {
		store := NewStore(testRegistry(t), false)

		assert.ErrorIs(t, store.Save(&Definition{Model: "gpt-4o", SystemPrompt: "x"}), errors.ErrInvalidInput)
		assert.ErrorIs(t, store.Save(&Definition{Name: "a", SystemPrompt: "x"}), errors.ErrInvalidInput)
		assert.ErrorIs(t, store.Save(testDefinition("a", "t", "t")), errors.ErrInvalidInput)
	})

	t.Run("stored definition is isolated from caller mutation", func(t *testing.T) {
		registry := testRegistry(t, "get_account")
		store := NewStore(registry, false)

		def := testDefinition("momentum", "get_account")
		require.NoError(t, store.Save(def))
		def.ToolNames[0] = "mutated"

		stored, err := store.Get("momentum")
		require.NoError(t, err)
		assert.Equal(t, []string{"get_account"}, stored.ToolNames)
	})
}

func TestStore_Delete(t *testing.T) {
	registry := testRegistry(t, "get_account")
	store := NewStore(registry, false)

	require.NoError(t, store.Save(testDefinition("momentum", "get_account")))
	require.NoError(t, store.Delete("momentum"))
	assert.Empty(t, store.List())

	assert.ErrorIs(t, store.Delete("momentum"), ErrAgentNotFound)
}
