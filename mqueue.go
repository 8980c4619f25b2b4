// Package rtmq is the public facade for the message queue subsystem:
// open/close/unlink a named queue and send/receive through the
// descriptors open returns. It composes the registry, queue object and
// engine behind the single entry point an embedding real-time executive
// would link against.
package rtmq

import (
	"context"
	"sync"
	"time"

	"github.com/kart-io/rtmq/config"
	"github.com/kart-io/rtmq/engine"
	qerrors "github.com/kart-io/rtmq/errors"
	"github.com/kart-io/rtmq/metrics"
	"github.com/kart-io/rtmq/notify"
	"github.com/kart-io/rtmq/queueobj"
	"github.com/kart-io/rtmq/registry"
)

// Attr supplies max_messages/message_size at creation.
type Attr = queueobj.Attr

// Flags combines the permission mode with create/exclusive/non-blocking
// bits.
type Flags = registry.OpenFlags

// Re-exported so callers never need to import the registry package
// directly for flag construction.
const (
	ReadOnly  = registry.ReadOnly
	WriteOnly = registry.WriteOnly
	ReadWrite = registry.ReadWrite
	NonBlock  = registry.NonBlock
	Create    = registry.Create
	Exclusive = registry.Exclusive
)

// AttrSnapshot is the result of GetAttr/SetAttr: the queue's fixed
// attributes, this descriptor's current flags, and the live depth.
type AttrSnapshot struct {
	MaxMessages  int
	MessageSize  int
	Flags        Flags
	CurrentCount int
}

// Subsystem is one instance of the message queue subsystem: a registry
// of named queues plus the ambient logger/metrics/tracing it was built
// with. Callers typically hold exactly one Subsystem per process,
// mirroring a single-image real-time executive.
type Subsystem struct {
	reg     *registry.Registry
	eng     *engine.Engine
	cfg     *config.Config
	metrics *metrics.Recorder

	mu   sync.Mutex
	live map[string]*queueobj.Object // supplemented: backs Stat/TeardownAll
}

// New builds a Subsystem from opts (see the config package).
func New(opts ...config.Option) (*Subsystem, error) {
	cfg := config.New(opts...)
	rec, err := metrics.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Subsystem{
		reg:     registry.New(),
		eng:     engine.New(engine.WithLogger(cfg.Logger), engine.WithMetrics(rec)),
		cfg:     cfg,
		metrics: rec,
		live:    make(map[string]*queueobj.Object),
	}, nil
}

// Descriptor is the handle open returns: the permission/mode flags and
// queue reference a caller uses for every subsequent call.
type Descriptor struct {
	sys   *Subsystem
	inner *registry.Descriptor
}

// Open resolves name to a queue, creating it with attr if Create is set
// and no queue exists yet.
func (s *Subsystem) Open(name string, flags Flags, attr Attr) (*Descriptor, error) {
	if flags.WantCreate() && attr == (Attr{}) {
		attr = s.cfg.DefaultAttr
	}
	if flags.WantCreate() && (attr.MaxMessages < 1 || attr.MessageSize < 1) {
		return nil, qerrors.ErrInvalidArgument
	}
	d, err := s.reg.Open(name, flags, func() (*queueobj.Object, error) {
		q := queueobj.New(name, attr)
		q.OnDestroy = func() { s.forgetIfCurrent(name, q) }
		s.mu.Lock()
		s.live[name] = q
		s.mu.Unlock()
		return q, nil
	})
	if err != nil {
		return nil, err
	}
	return &Descriptor{sys: s, inner: d}, nil
}

// forgetIfCurrent drops name from live, but only if it still points at
// q — a reopen under the same name after q was destroyed installs a
// fresh object first, and that entry must survive q's own destruction
// callback running afterward.
func (s *Subsystem) forgetIfCurrent(name string, q *queueobj.Object) {
	s.mu.Lock()
	if s.live[name] == q {
		delete(s.live, name)
	}
	s.mu.Unlock()
}

// Unlink removes name from the registry. Destruction of the underlying
// queue is deferred until every open descriptor closes.
func (s *Subsystem) Unlink(name string) error {
	return s.reg.Unlink(name)
}

// Stat is a supplemented read-only snapshot of a live queue by name,
// for monitoring use outside any one descriptor's view.
func (s *Subsystem) Stat(name string) (AttrSnapshot, error) {
	s.mu.Lock()
	q, ok := s.live[name]
	s.mu.Unlock()
	if !ok {
		return AttrSnapshot{}, qerrors.ErrNotFound
	}
	q.Mu.Lock()
	defer q.Mu.Unlock()
	if q.Removed() {
		return AttrSnapshot{}, qerrors.ErrNotFound
	}
	return AttrSnapshot{MaxMessages: q.Attr.MaxMessages, MessageSize: q.Attr.MessageSize, CurrentCount: q.CurrentCount()}, nil
}

// TeardownAll forcibly destroys every queue the subsystem has created.
// Existing descriptors become invalid afterward.
func (s *Subsystem) TeardownAll() {
	s.mu.Lock()
	queues := make([]*queueobj.Object, 0, len(s.live))
	for _, q := range s.live {
		queues = append(queues, q)
	}
	s.live = make(map[string]*queueobj.Object)
	s.mu.Unlock()

	for _, q := range queues {
		q.Destroy()
	}
}

// Shutdown flushes any configured telemetry exporter.
func (s *Subsystem) Shutdown(ctx context.Context) error {
	return s.metrics.Shutdown(ctx)
}

// Close releases d.
func (d *Descriptor) Close() {
	d.sys.reg.Close(d.inner)
}

// GetAttr returns a snapshot of the queue's fixed attributes, this
// descriptor's runtime flags, and the live depth.
func (d *Descriptor) GetAttr() AttrSnapshot {
	q := d.inner.Queue()
	q.Mu.Lock()
	defer q.Mu.Unlock()
	return AttrSnapshot{
		MaxMessages:  q.Attr.MaxMessages,
		MessageSize:  q.Attr.MessageSize,
		Flags:        d.inner.Flags(),
		CurrentCount: q.CurrentCount(),
	}
}

// SetAttr updates the non-permission bits of d's flags (principally
// NonBlock) and returns the attributes as they were before the change.
func (d *Descriptor) SetAttr(newFlags Flags) AttrSnapshot {
	old := d.GetAttr()
	d.inner.SetFlags(newFlags)
	return old
}

// Send blocks until buf is accepted, subject to ctx cancellation and
// d's non-blocking flag. callerPriority orders this call within the
// queue's sender wait queue if it has to block; it is independent of
// prio, the message's own priority.
func (d *Descriptor) Send(ctx context.Context, buf []byte, prio, callerPriority int) error {
	return d.sys.eng.Send(ctx, d.inner, buf, prio, callerPriority)
}

// TimedSend is Send with an absolute deadline, traced end to end.
// A zero deadline means block forever, subject only to ctx.
func (d *Descriptor) TimedSend(ctx context.Context, buf []byte, prio, callerPriority int, deadline time.Time) error {
	spanCtx, span := d.sys.metrics.TraceSend(ctx, d.inner.Name(), prio)
	err := d.sys.eng.TimedSend(spanCtx, d.inner, buf, prio, callerPriority, deadline)
	metrics.EndSpan(span, err)
	return err
}

// Receive blocks until a message is available, subject to ctx
// cancellation and d's non-blocking flag.
func (d *Descriptor) Receive(ctx context.Context, bufOut []byte, callerPriority int) (n, prio int, err error) {
	return d.sys.eng.Receive(ctx, d.inner, bufOut, callerPriority)
}

// TimedReceive is Receive with an absolute deadline, traced end to end.
// A zero deadline means block forever, subject only to ctx.
func (d *Descriptor) TimedReceive(ctx context.Context, bufOut []byte, callerPriority int, deadline time.Time) (n, prio int, err error) {
	spanCtx, span := d.sys.metrics.TraceReceive(ctx, d.inner.Name())
	n, prio, err = d.sys.eng.TimedReceive(spanCtx, d.inner, bufOut, callerPriority, deadline)
	metrics.EndSpan(span, err)
	return n, prio, err
}

// RegisterNotify arms the empty-to-nonempty notifier for target.
func (d *Descriptor) RegisterNotify(target notify.Target, signo, value int) error {
	return engine.RegisterNotify(d.inner, target, signo, value)
}

// ClearNotify disarms the notifier if caller currently holds it.
func (d *Descriptor) ClearNotify(caller notify.Target) error {
	return engine.ClearNotify(d.inner, caller)
}
