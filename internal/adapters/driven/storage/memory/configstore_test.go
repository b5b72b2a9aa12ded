package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("relay.rollback", "cleanup"))

	val, ok := store.Get("relay.rollback")
	assert.True(t, ok)
	assert.Equal(t, "cleanup", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("smtp.host", "mail.example.com"))
	require.NoError(t, store.Set("smtp.port", int64(2525)))
	require.NoError(t, store.Set("dispatch.rate_per_second", 1.5))
	require.NoError(t, store.Set("dispatch.burst", 3))

	assert.Equal(t, "mail.example.com", store.GetString("smtp.host"))
	assert.Equal(t, "", store.GetString("smtp.port"))
	assert.Equal(t, 2525, store.GetInt("smtp.port"))
	assert.Equal(t, 1.5, store.GetFloat("dispatch.rate_per_second"))
	assert.Equal(t, 3.0, store.GetFloat("dispatch.burst"))
	assert.Equal(t, 0.0, store.GetFloat("smtp.host"))
}

func TestConfigStore_Path(t *testing.T) {
	store := NewConfigStore()
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Load())
}
