package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepRoomsRemovesExpired(t *testing.T) {
	cfg := &Config{roomRetention: 24 * time.Hour}
	store := newTestStore(t)
	registry := newRegistry()

	now := time.Now()
	require.NoError(t, store.InsertRoom(&Room{
		Name:      "stale",
		CreatedAt: now.Add(-25 * time.Hour),
		Admin:     "u1",
		Players:   map[string]string{},
	}))
	require.NoError(t, store.InsertRoom(&Room{
		Name:      "fresh",
		CreatedAt: now.Add(-time.Hour),
		Admin:     "u1",
		Players:   map[string]string{},
	}))

	staleQueue := registry.Subscribe("stale", "u1")
	freshQueue := registry.Subscribe("fresh", "u1")

	sweepRooms(cfg, store, registry, now)

	stale, err := store.FindRoom("stale")
	require.NoError(t, err)
	assert.Nil(t, stale)

	fresh, err := store.FindRoom("fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh)

	select {
	case <-staleQueue.done:
	default:
		t.Fatal("sessions on a reaped room should observe a close")
	}

	select {
	case <-freshQueue.done:
		t.Fatal("sessions on a kept room should stay open")
	default:
	}

	assert.Empty(t, registry.Subscribers("stale"))
	assert.Equal(t, []string{"u1"}, registry.Subscribers("fresh"))
}

func TestSweepRoomsRetentionBoundary(t *testing.T) {
	cfg := &Config{roomRetention: 24 * time.Hour}
	store := newTestStore(t)
	registry := newRegistry()

	// Ages land exactly on and just inside the threshold; removal happens
	// exactly when age >= retention.
	now := time.Unix(1700000000, 0)
	require.NoError(t, store.InsertRoom(&Room{
		Name:      "exact",
		CreatedAt: now.Add(-24 * time.Hour),
		Admin:     "u1",
		Players:   map[string]string{},
	}))
	require.NoError(t, store.InsertRoom(&Room{
		Name:      "almost",
		CreatedAt: now.Add(-24*time.Hour + time.Second),
		Admin:     "u1",
		Players:   map[string]string{},
	}))

	sweepRooms(cfg, store, registry, now)

	exact, err := store.FindRoom("exact")
	require.NoError(t, err)
	assert.Nil(t, exact, "a room exactly at the threshold is removed")

	almost, err := store.FindRoom("almost")
	require.NoError(t, err)
	assert.NotNil(t, almost, "a room just inside the threshold is kept")
}

func TestSweepRoomsContinuesPastFailures(t *testing.T) {
	cfg := &Config{roomRetention: 24 * time.Hour}
	store := newTestStore(t)
	registry := newRegistry()

	now := time.Now()
	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, store.InsertRoom(&Room{
			Name:      name,
			CreatedAt: now.Add(-48 * time.Hour),
			Admin:     "u1",
			Players:   map[string]string{},
		}))
	}

	// Delete a room out from under the sweep; its removal becomes a no-op
	// and must not stop the others from going.
	require.NoError(t, store.DeleteRoom("two"))

	sweepRooms(cfg, store, registry, now)

	rooms, err := store.AllRooms()
	require.NoError(t, err)
	assert.Empty(t, rooms)
}
