package rtmq_test

import (
	"context"
	"testing"
	"time"

	rtmq "github.com/kart-io/rtmq"
	qerrors "github.com/kart-io/rtmq/errors"
	"github.com/kart-io/rtmq/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBasicFIFOByPriority exercises strict FIFO-within-priority ordering
// through the public facade.
func TestBasicFIFOByPriority(t *testing.T) {
	sys, err := rtmq.New()
	require.NoError(t, err)
	d, err := sys.Open("/q", rtmq.Create|rtmq.ReadWrite, rtmq.Attr{MaxMessages: 4, MessageSize: 32})
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	require.NoError(t, d.Send(ctx, []byte("A"), 1, 0))
	require.NoError(t, d.Send(ctx, []byte("B"), 3, 0))
	require.NoError(t, d.Send(ctx, []byte("C"), 2, 0))
	require.NoError(t, d.Send(ctx, []byte("D"), 3, 0))

	var got []string
	buf := make([]byte, 32)
	for i := 0; i < 4; i++ {
		n, _, err := d.Receive(ctx, buf, 0)
		require.NoError(t, err)
		got = append(got, string(buf[:n]))
	}
	assert.Equal(t, []string{"B", "D", "C", "A"}, got)
}

// TestNonBlockingFullThenDrain checks that a non-blocking descriptor
// rejects a send against a full queue and accepts one again after a
// receive frees a slot.
func TestNonBlockingFullThenDrain(t *testing.T) {
	sys, err := rtmq.New()
	require.NoError(t, err)
	d, err := sys.Open("/nb", rtmq.Create|rtmq.ReadWrite|rtmq.NonBlock, rtmq.Attr{MaxMessages: 1, MessageSize: 8})
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	require.NoError(t, d.Send(ctx, []byte("x"), 0, 0))
	assert.ErrorIs(t, d.Send(ctx, []byte("y"), 0, 0), qerrors.ErrWouldBlock)

	buf := make([]byte, 8)
	n, _, err := d.Receive(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf[:n]))

	require.NoError(t, d.Send(ctx, []byte("z"), 0, 0))
}

type recordingTarget struct {
	key        uint64
	deliveries chan [2]int
}

func (r *recordingTarget) ThreadKey() uint64 { return r.key }
func (r *recordingTarget) Deliver(signo, value int) {
	r.deliveries <- [2]int{signo, value}
}

var _ notify.Target = (*recordingTarget)(nil)

// TestNotifyOnEmptyToNonEmptyThroughFacade checks that a registered
// notifier fires once on the empty-to-non-empty transition and not
// again while the queue stays non-empty.
func TestNotifyOnEmptyToNonEmptyThroughFacade(t *testing.T) {
	sys, err := rtmq.New()
	require.NoError(t, err)
	d, err := sys.Open("/notify", rtmq.Create|rtmq.ReadWrite, rtmq.Attr{MaxMessages: 4, MessageSize: 8})
	require.NoError(t, err)
	defer d.Close()

	target := &recordingTarget{key: 1, deliveries: make(chan [2]int, 2)}
	require.NoError(t, d.RegisterNotify(target, 40, 99))

	ctx := context.Background()
	require.NoError(t, d.Send(ctx, []byte("z"), 0, 0))

	select {
	case delivery := <-target.deliveries:
		assert.Equal(t, [2]int{40, 99}, delivery)
	case <-time.After(time.Second):
		t.Fatal("notification never delivered")
	}

	// Second send into a still-non-empty queue: no further delivery.
	require.NoError(t, d.Send(ctx, []byte("y"), 0, 0))
	select {
	case <-target.deliveries:
		t.Fatal("notifier fired twice; should be one-shot")
	case <-time.After(50 * time.Millisecond):
	}
}

// TestUnlinkThenCloseDestroysThroughFacade checks that an unlinked queue
// stays usable by descriptors opened before the unlink and disappears
// from the registry once the last one closes.
func TestUnlinkThenCloseDestroysThroughFacade(t *testing.T) {
	sys, err := rtmq.New()
	require.NoError(t, err)
	fd1, err := sys.Open("/lifecycle", rtmq.Create|rtmq.ReadWrite, rtmq.Attr{MaxMessages: 2, MessageSize: 8})
	require.NoError(t, err)
	fd2, err := sys.Open("/lifecycle", rtmq.ReadWrite, rtmq.Attr{})
	require.NoError(t, err)

	require.NoError(t, sys.Unlink("/lifecycle"))

	ctx := context.Background()
	require.NoError(t, fd1.Send(ctx, []byte("x"), 0, 0))

	fd1.Close()
	_, _, err = fd2.Receive(ctx, make([]byte, 8), 0)
	require.NoError(t, err)

	fd2.Close()
	_, err = sys.Open("/lifecycle", rtmq.ReadWrite, rtmq.Attr{})
	assert.ErrorIs(t, err, qerrors.ErrNotFound)
}

func TestTeardownAllDestroysLiveQueues(t *testing.T) {
	sys, err := rtmq.New()
	require.NoError(t, err)
	d, err := sys.Open("/teardown", rtmq.Create|rtmq.ReadWrite, rtmq.Attr{MaxMessages: 2, MessageSize: 8})
	require.NoError(t, err)

	sys.TeardownAll()

	_, _, err = d.Receive(context.Background(), make([]byte, 8), 0)
	assert.ErrorIs(t, err, qerrors.ErrInvalidDescriptor)

	_, statErr := sys.Stat("/teardown")
	assert.ErrorIs(t, statErr, qerrors.ErrNotFound)
}
