// Package engine implements the send/receive operations that drive a
// queue object's pool, priority list, wait queues and notifier. It is
// the only component that links sends to receives — everything below it
// (pool, plist, waitqueue, queueobj) is passive data structure.
package engine

import (
	"context"
	stderrors "errors"
	"time"

	qerrors "github.com/kart-io/rtmq/errors"
	"github.com/kart-io/rtmq/notify"
	"github.com/kart-io/rtmq/registry"
	"github.com/kart-io/rtmq/waitqueue"
)

// TrySend is the non-blocking send primitive. It never parks: a full
// queue with no receiver waiting returns ErrWouldBlock immediately and
// leaves queue state untouched.
func (e *Engine) TrySend(d *registry.Descriptor, buf []byte, prio int) error {
	q := d.Queue()

	if !d.Flags().CanWrite() {
		return qerrors.ErrPermissionDenied
	}
	if len(buf) > q.Attr.MessageSize {
		return qerrors.ErrMessageTooLarge
	}

	q.Mu.Lock()
	defer q.Mu.Unlock()

	if q.Removed() {
		return qerrors.ErrInvalidDescriptor
	}

	// Direct-handoff fast path: a receiver already parked on this queue
	// publishes a *handoffSlot before sleeping. Writing straight into its
	// buffer skips the pool and priority list entirely.
	if w := q.Receivers.WakeOne(); w != nil {
		h := w.Handoff.(*handoffSlot)
		h.n = copy(h.buf, buf)
		h.prio = prio
		h.used = true
		w.Wake(waitqueue.WokenNormal)
		e.Log.Debug(context.Background(), "direct handoff send", "queue", q.Name)
		e.Metrics.RecordSend("handoff")
		return nil
	}

	slot, ok := q.Pool.Alloc()
	if !ok {
		e.Metrics.RecordSend("would_block")
		return qerrors.ErrWouldBlock
	}
	slot.Len = copy(slot.Payload, buf)
	q.List.Enqueue(slot, prio)
	e.Metrics.ObserveCurrentCount(q.Name, 1)

	// Empty-to-nonempty transition with nobody already waiting: fire the
	// one-shot notifier.
	if q.CurrentCount() == 1 && q.Notifier.Registered() {
		q.Notifier.Fire()
	}

	e.Metrics.RecordSend("queued")
	return nil
}

// TryReceive is the non-blocking receive primitive.
func (e *Engine) TryReceive(d *registry.Descriptor, bufOut []byte) (n int, prio int, err error) {
	q := d.Queue()

	if !d.Flags().CanRead() {
		return 0, 0, qerrors.ErrPermissionDenied
	}
	if len(bufOut) < q.Attr.MessageSize {
		return 0, 0, qerrors.ErrMessageTooLarge
	}

	q.Mu.Lock()
	defer q.Mu.Unlock()

	if q.Removed() {
		return 0, 0, qerrors.ErrInvalidDescriptor
	}

	slot, p, ok := q.List.DequeueHead()
	if !ok {
		e.Metrics.RecordReceive("would_block")
		return 0, 0, qerrors.ErrWouldBlock
	}

	n = copy(bufOut, slot.Payload[:slot.Len])
	prio = p
	q.Pool.Free(slot)
	e.Metrics.ObserveCurrentCount(q.Name, -1)

	if w := q.Senders.WakeOne(); w != nil {
		w.Wake(waitqueue.WokenNormal)
	}

	e.Metrics.RecordReceive("dequeued")
	return n, prio, nil
}

// Send blocks indefinitely (subject to ctx cancellation) until buf is
// accepted. Equivalent to TimedSend with a zero deadline.
func (e *Engine) Send(ctx context.Context, d *registry.Descriptor, buf []byte, prio, callerPriority int) error {
	return e.TimedSend(ctx, d, buf, prio, callerPriority, time.Time{})
}

// Receive blocks indefinitely (subject to ctx cancellation) until a
// message is available. Equivalent to TimedReceive with a zero deadline.
func (e *Engine) Receive(ctx context.Context, d *registry.Descriptor, bufOut []byte, callerPriority int) (n, prio int, err error) {
	return e.TimedReceive(ctx, d, bufOut, callerPriority, time.Time{})
}

// TimedSend implements the retry/park loop for sends. deadline's zero
// value means "block forever" (subject to ctx).
func (e *Engine) TimedSend(ctx context.Context, d *registry.Descriptor, buf []byte, prio, callerPriority int, deadline time.Time) (err error) {
	q := d.Queue()
	begin := time.Now()
	defer func() {
		e.Log.Trace(ctx, begin, func() (string, int64) {
			if err != nil {
				return "send " + q.Name, 0
			}
			return "send " + q.Name, 1
		}, err)
	}()
	started := time.Time{}

	for {
		err := e.TrySend(d, buf, prio)
		if err == nil || !stderrors.Is(err, qerrors.ErrWouldBlock) {
			return err
		}
		if d.Flags().NonBlocking() {
			return qerrors.ErrWouldBlock
		}
		if mayNotBlock(ctx) {
			return qerrors.ErrNotPermitted
		}

		waitCtx, cancel := deadlineContext(ctx, deadline)

		q.Mu.Lock()
		if q.Removed() {
			q.Mu.Unlock()
			cancel()
			return qerrors.ErrInvalidDescriptor
		}
		if q.Pool.FreeCount() > 0 {
			// A receive freed a slot since TrySend failed; retry instead
			// of parking on a queue that is no longer full.
			q.Mu.Unlock()
			cancel()
			continue
		}
		w := q.Senders.Park(callerPriority)
		q.Mu.Unlock()

		if started.IsZero() {
			started = time.Now()
		}
		e.Metrics.ObserveBlockedWaiters("send", 1)
		cause := q.Senders.SleepUntil(waitCtx, w)
		e.Metrics.ObserveBlockedWaiters("send", -1)
		cancel()

		switch cause {
		case waitqueue.WokenNormal:
			continue // re-attempt TrySend; a slot or receiver may now exist
		case waitqueue.Removed:
			e.recordBlocked("send", started)
			return qerrors.ErrInvalidDescriptor
		case waitqueue.TimedOut:
			e.recordBlocked("send", started)
			return qerrors.ErrTimedOut
		case waitqueue.Interrupted:
			e.recordBlocked("send", started)
			return qerrors.ErrInterrupted
		}
	}
}

// TimedReceive implements the retry/park loop for receives, publishing a
// handoffSlot before every park so a concurrent TrySend can take the
// direct-handoff fast path.
func (e *Engine) TimedReceive(ctx context.Context, d *registry.Descriptor, bufOut []byte, callerPriority int, deadline time.Time) (n, prio int, err error) {
	q := d.Queue()
	begin := time.Now()
	defer func() {
		e.Log.Trace(ctx, begin, func() (string, int64) {
			if err != nil {
				return "receive " + q.Name, 0
			}
			return "receive " + q.Name, 1
		}, err)
	}()
	started := time.Time{}

	for {
		n, prio, err = e.TryReceive(d, bufOut)
		if err == nil || !stderrors.Is(err, qerrors.ErrWouldBlock) {
			return n, prio, err
		}
		if d.Flags().NonBlocking() {
			return 0, 0, qerrors.ErrWouldBlock
		}
		if mayNotBlock(ctx) {
			return 0, 0, qerrors.ErrNotPermitted
		}

		waitCtx, cancel := deadlineContext(ctx, deadline)

		h := &handoffSlot{buf: bufOut}
		q.Mu.Lock()
		if q.Removed() {
			q.Mu.Unlock()
			cancel()
			return 0, 0, qerrors.ErrInvalidDescriptor
		}
		if q.CurrentCount() > 0 {
			// A send enqueued a message since TryReceive failed; retry
			// instead of parking on a queue that is no longer empty.
			q.Mu.Unlock()
			cancel()
			continue
		}
		w := q.Receivers.Park(callerPriority)
		w.Handoff = h
		q.Mu.Unlock()

		if started.IsZero() {
			started = time.Now()
		}
		e.Metrics.ObserveBlockedWaiters("receive", 1)
		cause := q.Receivers.SleepUntil(waitCtx, w)
		e.Metrics.ObserveBlockedWaiters("receive", -1)
		cancel()

		switch cause {
		case waitqueue.WokenNormal:
			if h.used {
				e.recordBlocked("receive", started)
				return h.n, h.prio, nil
			}
			continue
		case waitqueue.Removed:
			e.recordBlocked("receive", started)
			return 0, 0, qerrors.ErrInvalidDescriptor
		case waitqueue.TimedOut:
			e.recordBlocked("receive", started)
			return 0, 0, qerrors.ErrTimedOut
		case waitqueue.Interrupted:
			e.recordBlocked("receive", started)
			return 0, 0, qerrors.ErrInterrupted
		}
	}
}

func (e *Engine) recordBlocked(direction string, started time.Time) {
	if started.IsZero() {
		return
	}
	e.Metrics.RecordBlocked(direction, time.Since(started))
}

func deadlineContext(ctx context.Context, deadline time.Time) (context.Context, context.CancelFunc) {
	if deadline.IsZero() {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, deadline)
}

// RegisterNotify arms the empty-to-nonempty notifier for this queue,
// delivered the next time the queue transitions from empty to nonempty
// with no receiver already waiting.
func RegisterNotify(d *registry.Descriptor, target notify.Target, signo, value int) error {
	if !d.Flags().CanRead() {
		return qerrors.ErrPermissionDenied
	}
	q := d.Queue()
	q.Mu.Lock()
	defer q.Mu.Unlock()
	if q.Removed() {
		return qerrors.ErrInvalidDescriptor
	}
	return q.Notifier.Register(target, signo, value)
}

// ClearNotify disarms the notifier if caller currently holds it. A
// second clear by the same caller is a no-op.
func ClearNotify(d *registry.Descriptor, caller notify.Target) error {
	if !d.Flags().CanRead() {
		return qerrors.ErrPermissionDenied
	}
	q := d.Queue()
	q.Mu.Lock()
	defer q.Mu.Unlock()
	if q.Removed() {
		return qerrors.ErrInvalidDescriptor
	}
	return q.Notifier.Clear(caller)
}
