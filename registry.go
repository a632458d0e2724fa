package main

import (
	"sync"
)

// indexChannel is the broadcast group for every visitor on the landing page.
// Every other channel is a room name.
const indexChannel = "index"

// wakeQueue carries opaque wake tokens from publishers to one live view
// session. Tokens have no payload; the consumer re-reads the store on every
// wake, so redundant tokens arriving before a drain coalesce into one.
type wakeQueue struct {
	tokens chan struct{}
	done   chan struct{}
	once   sync.Once
}

func newWakeQueue() *wakeQueue {
	return &wakeQueue{
		tokens: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// wake enqueues a token. Never blocks.
func (q *wakeQueue) wake() {
	select {
	case q.tokens <- struct{}{}:
	default:
	}
}

// drop force-closes the queue, waking any blocked consumer with a close
// signal. Safe to call more than once.
func (q *wakeQueue) drop() {
	q.once.Do(func() {
		close(q.done)
	})
}

// Registry maps (channel, subscriber) pairs to wake queues. One registry is
// created per server and handed to handlers and sessions; all access goes
// through its mutex.
type Registry struct {
	mu   sync.Mutex
	subs map[string]map[string]*wakeQueue
}

func newRegistry() *Registry {
	return &Registry{
		subs: make(map[string]map[string]*wakeQueue),
	}
}

// Subscribe returns the queue for this pair, creating it if absent. A pair
// resubscribing after an Unsubscribe always gets a fresh, empty queue.
func (r *Registry) Subscribe(channel, subscriber string) *wakeQueue {
	r.mu.Lock()
	defer r.mu.Unlock()

	channelSubs, ok := r.subs[channel]
	if !ok {
		channelSubs = make(map[string]*wakeQueue)
		r.subs[channel] = channelSubs
	}

	if queue, ok := channelSubs[subscriber]; ok {
		return queue
	}

	queue := newWakeQueue()
	channelSubs[subscriber] = queue

	return queue
}

// Unsubscribe removes the pair's queue. No-op when already removed.
func (r *Registry) Unsubscribe(channel, subscriber string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	channelSubs, ok := r.subs[channel]
	if !ok {
		return
	}

	delete(channelSubs, subscriber)
	if len(channelSubs) == 0 {
		delete(r.subs, channel)
	}
}

// Subscribers returns a snapshot of the ids registered on a channel.
// Subscribers arriving after the snapshot may miss the next wake; their
// session's initial render covers them.
func (r *Registry) Subscribers(channel string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.subs[channel]))
	for id := range r.subs[channel] {
		ids = append(ids, id)
	}

	return ids
}

// Wake enqueues a token for a single pair, if it is still registered.
func (r *Registry) Wake(channel, subscriber string) {
	r.mu.Lock()
	queue := r.subs[channel][subscriber]
	r.mu.Unlock()

	if queue != nil {
		queue.wake()
	}
}

// Publish wakes every subscriber currently on a channel. Never blocks, and
// a channel with no subscribers is a silent no-op.
func (r *Registry) Publish(channel string) {
	r.mu.Lock()
	queues := make([]*wakeQueue, 0, len(r.subs[channel]))
	for _, queue := range r.subs[channel] {
		queues = append(queues, queue)
	}
	r.mu.Unlock()

	for _, queue := range queues {
		queue.wake()
	}
}

// DropChannel force-closes every queue on a channel and removes the channel.
// Sessions blocked on a dropped queue observe a close, not a stall.
func (r *Registry) DropChannel(channel string) {
	r.mu.Lock()
	channelSubs := r.subs[channel]
	delete(r.subs, channel)
	r.mu.Unlock()

	for _, queue := range channelSubs {
		queue.drop()
	}
}
