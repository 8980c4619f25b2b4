// Package plist implements the priority-ordered list of enqueued
// messages. It is the pending-message structure a queue object drains
// from the head on receive.
//
// Like pool, List is not self-synchronizing — it lives under the queue
// object's single lock alongside the pool arena.
package plist

import "github.com/kart-io/rtmq/pool"

type node struct {
	slot *pool.Slot
	prio int
	next *node
	prev *node
}

// List orders enqueued slots by descending priority, FIFO within a
// priority band. The head is the next slot a receiver will take
// (DequeueHead).
type List struct {
	head *node
	tail *node
	n    int
}

// New returns an empty priority list.
func New() *List { return &List{} }

// Count returns the number of enqueued slots.
func (l *List) Count() int { return l.n }

// Enqueue inserts slot at priority prio. A fresh enqueue at a new maximum
// priority becomes the new head; at a priority equal to an existing band
// it goes behind the existing entries in that band (tail of the band).
func (l *List) Enqueue(slot *pool.Slot, prio int) {
	slot.Priority = prio
	nn := &node{slot: slot, prio: prio}

	// Walk from the head until we find the first node with strictly
	// lower priority than nn; insert immediately before it. This lands
	// nn after every existing node with priority >= prio, i.e. at the
	// tail of its own band and ahead of the next lower band.
	cur := l.head
	for cur != nil && cur.prio >= prio {
		cur = cur.next
	}

	switch {
	case cur == nil:
		// New tail (including the empty-list case).
		nn.prev = l.tail
		if l.tail != nil {
			l.tail.next = nn
		} else {
			l.head = nn
		}
		l.tail = nn
	default:
		nn.next = cur
		nn.prev = cur.prev
		if cur.prev != nil {
			cur.prev.next = nn
		} else {
			l.head = nn
		}
		cur.prev = nn
	}
	l.n++
}

// DequeueHead removes and returns the head of the list.
func (l *List) DequeueHead() (slot *pool.Slot, prio int, ok bool) {
	if l.head == nil {
		return nil, 0, false
	}
	nn := l.head
	l.head = nn.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}
	l.n--
	return nn.slot, nn.prio, true
}
