//go:build linux

package notify

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// SignalTarget delivers the notification as a genuine realtime signal to
// a specific OS thread: a thread/signo/value delivery mode built on
// golang.org/x/sys/unix.
//
// The sigval payload (value) cannot be queued through unix.Tgkill, which
// only delivers the bare signal number — rt_sigqueueinfo's payload isn't
// exposed by x/sys/unix without cgo. Deliver accepts value only so its
// signature matches the Target interface and discards it; ChannelTarget
// is the Target that carries the value through.
type SignalTarget struct {
	tid int
}

// NewSignalTarget targets the OS thread identified by tid (e.g. from
// unix.Gettid() captured on the consumer's locked OS thread).
func NewSignalTarget(tid int) *SignalTarget { return &SignalTarget{tid: tid} }

func (s *SignalTarget) ThreadKey() uint64 { return uint64(s.tid) }

func (s *SignalTarget) Deliver(signo, _ int) {
	_ = unix.Tgkill(os.Getpid(), s.tid, syscall.Signal(signo))
}
