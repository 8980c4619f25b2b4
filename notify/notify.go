// Package notify implements at-most-one registered notification target
// per queue, delivered when a message arrives at an otherwise-empty
// queue with no waiting receiver.
//
// Like pool and plist, a Notifier carries no lock of its own — the queue
// object that owns it serializes access under its own lock, which is
// also what makes "clear iff caller is currently registered" and
// "one-shot delivery" race-free.
package notify

import "github.com/kart-io/rtmq/errors"

// Target is a registrable notification sink. ThreadKey identifies the
// registrant for the idempotent-re-arm and ownership-on-clear rules; two
// Targets with the same key are considered the same "thread" even if
// they are distinct Target values (e.g. two ChannelTarget handles minted
// for the same logical consumer).
type Target interface {
	ThreadKey() uint64
	Deliver(signo, value int)
}

// Realtime signal range accepted by Register, matching the conventional
// Linux SIGRTMIN..SIGRTMAX span.
const (
	MinRTSignal = 34
	MaxRTSignal = 64
)

type registration struct {
	target Target
	signo  int
	value  int
}

// Notifier holds at-most-one registration.
type Notifier struct {
	reg *registration
}

// New returns an unregistered notifier.
func New() *Notifier { return &Notifier{} }

// Registered reports whether a target is currently armed.
func (n *Notifier) Registered() bool { return n.reg != nil }

// Register installs target to receive one signo/value delivery on the
// next empty-to-non-empty transition with no waiting receiver. It
// succeeds if no registration exists, or the existing one targets the
// same thread (idempotent re-arm); otherwise it fails Busy.
func (n *Notifier) Register(target Target, signo, value int) error {
	if signo < MinRTSignal || signo > MaxRTSignal {
		return errors.Wrap(errors.CodeInvalidArgument, "signo outside realtime signal range", nil)
	}
	if n.reg != nil && n.reg.target.ThreadKey() != target.ThreadKey() {
		return errors.ErrBusy
	}
	n.reg = &registration{target: target, signo: signo, value: value}
	return nil
}

// Clear removes the registration if caller is the registrant, or is a
// no-op if there is no registration (clear is idempotent). Clearing
// someone else's registration fails Busy.
func (n *Notifier) Clear(caller Target) error {
	if n.reg == nil {
		return nil
	}
	if n.reg.target.ThreadKey() != caller.ThreadKey() {
		return errors.ErrBusy
	}
	n.reg = nil
	return nil
}

// Fire delivers the registered notification, if any, and clears the
// registration (one-shot). It must only be called by the engine on the
// empty-to-non-empty transition with no receiver waiting.
func (n *Notifier) Fire() {
	if n.reg == nil {
		return
	}
	reg := n.reg
	n.reg = nil
	reg.target.Deliver(reg.signo, reg.value)
}
