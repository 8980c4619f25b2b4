// Package queueobj implements the queue object: it composes a message
// pool, a priority message list, two wait queues (one per direction),
// queue attributes, and a notifier link.
package queueobj

import (
	"sync"

	"github.com/kart-io/rtmq/notify"
	"github.com/kart-io/rtmq/plist"
	"github.com/kart-io/rtmq/pool"
	"github.com/kart-io/rtmq/waitqueue"
)

// Attr holds the immutable-after-creation queue attributes.
type Attr struct {
	MaxMessages int
	MessageSize int
}

// Object is one named queue. Everything below Mu is mutated only while
// holding it — one lock per queue (see DESIGN.md for why a per-queue
// lock was chosen over a single subsystem-wide lock).
type Object struct {
	Mu sync.Mutex

	Name string
	Attr Attr

	Pool      *pool.Pool
	List      *plist.List
	Senders   *waitqueue.Queue // blocked on a full queue
	Receivers *waitqueue.Queue // blocked on an empty queue
	Notifier  *notify.Notifier

	// OnDestroy, if set, runs once from Destroy after the object is
	// marked removed, with Mu released. A caller that shadows Objects
	// by name (e.g. for a name-keyed stat lookup) uses this to drop its
	// entry exactly when the object actually goes away.
	OnDestroy func()

	removed bool
}

// New allocates the pool arena and initializes the lists and wait
// queues for a freshly created queue. This is the expensive init step
// that runs with the registry lock released.
func New(name string, attr Attr) *Object {
	return &Object{
		Name:      name,
		Attr:      attr,
		Pool:      pool.New(attr.MaxMessages, attr.MessageSize),
		List:      plist.New(),
		Senders:   waitqueue.New(),
		Receivers: waitqueue.New(),
		Notifier:  notify.New(),
	}
}

// CurrentCount returns the number of currently enqueued messages. Caller
// must hold Mu.
func (o *Object) CurrentCount() int { return o.List.Count() }

// Removed reports whether Destroy has run. Caller must hold Mu.
func (o *Object) Removed() bool { return o.removed }

// Destroy flushes both wait queues with waitqueue.Removed (so blocked
// callers surface invalid-descriptor) and marks the object removed. The
// pool arena needs no explicit free in Go — dropping the Object's last
// reference lets the garbage collector reclaim the arena; there is no
// lock-sensitive deallocation work left to do once the wait queues are
// flushed. OnDestroy runs after Mu is released, once, even if Destroy is
// called more than once concurrently.
func (o *Object) Destroy() {
	o.Mu.Lock()
	if o.removed {
		o.Mu.Unlock()
		return
	}
	o.removed = true
	o.Senders.Flush(waitqueue.Removed)
	o.Receivers.Flush(waitqueue.Removed)
	o.Mu.Unlock()

	if o.OnDestroy != nil {
		o.OnDestroy()
	}
}
