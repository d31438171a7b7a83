package bot

import (
	"context"
	"sync"

	"github.com/solacelabs/solace/internal/transport"
)

// Dispatcher fans inbound updates out to per-conversation FIFO queues. At
// most one update per conversation is in flight at any time, so pipeline
// runs for the same chat never interleave; distinct chats proceed
// concurrently.
type Dispatcher struct {
	handle func(context.Context, transport.Update)

	mu     sync.Mutex
	queues map[int64][]transport.Update
	active map[int64]bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher invoking handle for every update.
func NewDispatcher(handle func(context.Context, transport.Update)) *Dispatcher {
	return &Dispatcher{
		handle: handle,
		queues: make(map[int64][]transport.Update),
		active: make(map[int64]bool),
	}
}

// Enqueue queues an update for its conversation, starting a drain worker if
// none is running for that chat. Updates without a text message are dropped.
func (d *Dispatcher) Enqueue(u transport.Update) {
	if u.Message == nil || u.Message.Text == nil {
		return
	}
	id := u.Message.Chat.ID

	d.mu.Lock()
	d.queues[id] = append(d.queues[id], u)
	if !d.active[id] {
		d.active[id] = true
		d.wg.Add(1)
		go d.drain(id)
	}
	d.mu.Unlock()
}

// drain processes the queue for one conversation in order and exits once it
// is empty. Each run gets a fresh background context: an accepted message
// must be answered even when the poller is already shutting down, so the
// polling loop's lifetime never cancels a queued pipeline run.
func (d *Dispatcher) drain(id int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[id]
		if len(q) == 0 {
			delete(d.active, id)
			delete(d.queues, id)
			d.mu.Unlock()
			return
		}
		u := q[0]
		d.queues[id] = q[1:]
		d.mu.Unlock()

		d.handle(context.Background(), u)
	}
}

// Wait blocks until all queued updates have been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
