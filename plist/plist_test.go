package plist_test

import (
	"testing"

	"github.com/kart-io/rtmq/plist"
	"github.com/kart-io/rtmq/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotWith(p *pool.Pool, payload string) *pool.Slot {
	s, _ := p.Alloc()
	copy(s.Payload, payload)
	s.Len = len(payload)
	return s
}

// TestBasicFIFOByPriority checks strict FIFO-within-priority ordering.
func TestBasicFIFOByPriority(t *testing.T) {
	p := pool.New(4, 32)
	l := plist.New()

	a := slotWith(p, "A")
	b := slotWith(p, "B")
	c := slotWith(p, "C")
	d := slotWith(p, "D")

	l.Enqueue(a, 1)
	l.Enqueue(b, 3)
	l.Enqueue(c, 2)
	l.Enqueue(d, 3)

	require.Equal(t, 4, l.Count())

	order := []string{}
	for l.Count() > 0 {
		s, _, ok := l.DequeueHead()
		require.True(t, ok)
		order = append(order, string(s.Payload[:s.Len]))
	}
	assert.Equal(t, []string{"B", "D", "C", "A"}, order)
}

func TestDequeueEmptyReturnsFalse(t *testing.T) {
	l := plist.New()
	_, _, ok := l.DequeueHead()
	assert.False(t, ok)
}

func TestNewMaxBecomesHead(t *testing.T) {
	p := pool.New(2, 8)
	l := plist.New()
	low := slotWith(p, "lo")
	high := slotWith(p, "hi")
	l.Enqueue(low, 1)
	l.Enqueue(high, 9)

	s, prio, _ := l.DequeueHead()
	assert.Equal(t, "hi", string(s.Payload[:s.Len]))
	assert.Equal(t, 9, prio)
}
