package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drained(q *wakeQueue) bool {
	select {
	case <-q.tokens:
		return false
	default:
		return true
	}
}

func TestRegistrySubscribeIsIdempotent(t *testing.T) {
	registry := newRegistry()

	first := registry.Subscribe("abc", "u1")
	second := registry.Subscribe("abc", "u1")

	require.Same(t, first, second)
	assert.Equal(t, []string{"u1"}, registry.Subscribers("abc"))
}

func TestRegistryResubscribeYieldsFreshQueue(t *testing.T) {
	registry := newRegistry()

	stale := registry.Subscribe("abc", "u1")
	stale.wake()

	registry.Unsubscribe("abc", "u1")
	fresh := registry.Subscribe("abc", "u1")

	require.NotSame(t, stale, fresh)
	assert.True(t, drained(fresh), "fresh queue should hold no tokens")
}

func TestRegistryUnsubscribeAbsentIsNoop(t *testing.T) {
	registry := newRegistry()

	registry.Unsubscribe("abc", "u1")
	registry.Unsubscribe("abc", "u1")

	assert.Empty(t, registry.Subscribers("abc"))
}

func TestRegistryPublishWakesEverySubscriber(t *testing.T) {
	registry := newRegistry()

	queues := map[string]*wakeQueue{
		"u1": registry.Subscribe("abc", "u1"),
		"u2": registry.Subscribe("abc", "u2"),
		"u3": registry.Subscribe("abc", "u3"),
	}
	bystander := registry.Subscribe("other", "u4")

	registry.Publish("abc")

	for id, queue := range queues {
		assert.False(t, drained(queue), "subscriber %s should have been woken", id)
	}
	assert.True(t, drained(bystander), "other channels should be untouched")
}

func TestRegistryPublishWithoutSubscribers(t *testing.T) {
	registry := newRegistry()

	registry.Publish("nobody")
}

func TestRegistryWakeTargetsOnePair(t *testing.T) {
	registry := newRegistry()

	target := registry.Subscribe("abc", "u1")
	other := registry.Subscribe("abc", "u2")

	registry.Wake("abc", "u1")
	registry.Wake("abc", "missing")

	assert.False(t, drained(target))
	assert.True(t, drained(other))
}

func TestWakeQueueCoalesces(t *testing.T) {
	queue := newWakeQueue()

	queue.wake()
	queue.wake()
	queue.wake()

	require.False(t, drained(queue), "one token should be pending")
	assert.True(t, drained(queue), "redundant wakes should collapse into one token")
}

func TestRegistryDropChannelClosesQueues(t *testing.T) {
	registry := newRegistry()

	queue := registry.Subscribe("abc", "u1")
	registry.DropChannel("abc")

	select {
	case <-queue.done:
	default:
		t.Fatal("dropped queue should be closed")
	}

	assert.Empty(t, registry.Subscribers("abc"))
}

func TestWakeQueueDropTwice(t *testing.T) {
	queue := newWakeQueue()

	queue.drop()
	queue.drop()
}
