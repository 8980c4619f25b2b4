// Package registry implements a name-to-object table with open-by-name
// create/exclusive/ownership semantics, per-opener descriptors, and
// reference counting that governs destruction.
//
// The map-plus-mutex shape adds two-phase publish, refcounting and
// descriptor issuance on top of a plain name -> factory registry.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/kart-io/rtmq/errors"
	"github.com/kart-io/rtmq/queueobj"
)

// node is one named queue's registry anchor. It outlives removal from
// Registry.byName — open descriptors keep a direct pointer to it so they
// keep working after an Unlink.
type node struct {
	name    string
	queue   *queueobj.Object
	linked  bool
	opens   int
	ready   chan struct{} // closed once the two-phase publish finishes
	buildErr error
}

func (n *node) refcount() int {
	rc := n.opens
	if n.linked {
		rc++
	}
	return rc
}

// Descriptor is the small handle returned by Open: a pointer to the
// registry node plus the runtime (permission + non-blocking) flags and an
// opaque id exposed to the caller.
type Descriptor struct {
	n     *node
	flags OpenFlags
	id    uint64
}

func (d *Descriptor) Queue() *queueobj.Object { return d.n.queue }
func (d *Descriptor) Flags() OpenFlags         { return d.flags }
func (d *Descriptor) SetFlags(f OpenFlags)     { d.flags = (d.flags.AccessMode()) | (f & NonBlock) }
func (d *Descriptor) ID() uint64               { return d.id }
func (d *Descriptor) Name() string             { return d.n.name }

// Registry is the process-wide name -> node table.
type Registry struct {
	mu     sync.Mutex
	byName map[string]*node
	nextID uint64
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byName: make(map[string]*node)}
}

// Open resolves name to a queue, creating it via create() if needed, and
// returns a fresh descriptor bound to it. create is invoked with the
// registry lock released so expensive pool allocation never blocks
// concurrent openers of other names; concurrent openers of the *same*
// name park on the node's ready channel until the creator finishes, a
// two-phase publish realized here as a lazily-closed channel.
func (r *Registry) Open(name string, flags OpenFlags, create func() (*queueobj.Object, error)) (*Descriptor, error) {
	r.mu.Lock()
	n, exists := r.byName[name]

	switch {
	case exists && flags.WantCreate() && flags.WantExclusive():
		r.mu.Unlock()
		return nil, errors.ErrAlreadyExists

	case exists:
		ready := n.ready
		r.mu.Unlock()
		if ready != nil {
			<-ready
		}
		r.mu.Lock()
		if n.buildErr != nil {
			r.mu.Unlock()
			return nil, n.buildErr
		}
		n.opens++
		d := r.newDescriptor(n, flags)
		r.mu.Unlock()
		return d, nil

	case !flags.WantCreate():
		r.mu.Unlock()
		return nil, errors.ErrNotFound

	default:
		n = &node{name: name, linked: true, opens: 1, ready: make(chan struct{})}
		r.byName[name] = n
		r.mu.Unlock()

		queue, err := create()

		r.mu.Lock()
		if err != nil {
			n.buildErr = err
			delete(r.byName, name)
			close(n.ready)
			r.mu.Unlock()
			return nil, err
		}
		n.queue = queue
		close(n.ready)
		d := r.newDescriptor(n, flags)
		r.mu.Unlock()
		return d, nil
	}
}

func (r *Registry) newDescriptor(n *node, flags OpenFlags) *Descriptor {
	r.nextID++
	return &Descriptor{n: n, flags: flags.RuntimeFlags(), id: r.nextID}
}

// Close releases d. If this drops the refcount to zero (all descriptors
// closed and the name already unlinked), the queue object is destroyed
// with the registry lock released.
func (r *Registry) Close(d *Descriptor) {
	r.mu.Lock()
	n := d.n
	n.opens--
	destroy := n.refcount() == 0
	r.mu.Unlock()

	if destroy {
		n.queue.Destroy()
	}
}

// Unlink removes name from the table. If this drops refcount to zero
// (no descriptors remain open), the queue is destroyed immediately;
// otherwise destruction is deferred to the last Close.
func (r *Registry) Unlink(name string) error {
	r.mu.Lock()
	n, exists := r.byName[name]
	if !exists {
		r.mu.Unlock()
		return errors.ErrNotFound
	}
	delete(r.byName, name)
	n.linked = false
	destroy := n.refcount() == 0
	r.mu.Unlock()

	if destroy {
		n.queue.Destroy()
	}
	return nil
}

// globalID backs NextGlobalID, a process-wide monotonic counter for callers
// (e.g. notify.Target identities) that want an id independent of any one
// registry instance.
var globalID atomic.Uint64

// NextGlobalID returns a fresh process-wide identifier.
func NextGlobalID() uint64 { return globalID.Add(1) }
