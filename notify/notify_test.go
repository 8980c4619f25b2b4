package notify_test

import (
	"testing"

	"github.com/kart-io/rtmq/errors"
	"github.com/kart-io/rtmq/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNotifyOnEmptyToNonEmpty checks one-shot delivery on Fire and that
// a second Fire with nothing registered is silent.
func TestNotifyOnEmptyToNonEmpty(t *testing.T) {
	n := notify.New()
	target := notify.NewChannelTarget(1)
	require.NoError(t, n.Register(target, 40, 7))

	n.Fire()

	select {
	case got := <-target.C():
		assert.Equal(t, 40, got.Signo)
		assert.Equal(t, 7, got.Value)
	default:
		t.Fatal("expected exactly one delivery")
	}
	assert.False(t, n.Registered(), "delivery must be one-shot")

	// A second Fire with nothing registered must not deliver again.
	n.Fire()
	select {
	case <-target.C():
		t.Fatal("unexpected second delivery")
	default:
	}
}

func TestRegisterBusyWhenAnotherThreadHolds(t *testing.T) {
	n := notify.New()
	a := notify.NewChannelTarget(1)
	b := notify.NewChannelTarget(2)

	require.NoError(t, n.Register(a, 40, 0))
	err := n.Register(b, 41, 0)
	require.ErrorIs(t, err, errors.ErrBusy)
}

func TestRegisterIdempotentReArmSameThread(t *testing.T) {
	n := notify.New()
	a := notify.NewChannelTarget(1)
	require.NoError(t, n.Register(a, 40, 1))
	require.NoError(t, n.Register(a, 40, 2)) // re-arm, same thread key
}

// TestIdempotentNotifyClear checks that clearing an unregistered
// notifier is a repeatable no-op.
func TestIdempotentNotifyClear(t *testing.T) {
	n := notify.New()
	a := notify.NewChannelTarget(1)
	assert.NoError(t, n.Clear(a)) // no-op, nothing registered
	assert.NoError(t, n.Clear(a)) // still a no-op
}

func TestClearByNonOwnerIsBusy(t *testing.T) {
	n := notify.New()
	a := notify.NewChannelTarget(1)
	b := notify.NewChannelTarget(2)
	require.NoError(t, n.Register(a, 40, 0))
	assert.ErrorIs(t, n.Clear(b), errors.ErrBusy)
}

func TestRegisterRejectsOutOfRangeSignal(t *testing.T) {
	n := notify.New()
	a := notify.NewChannelTarget(1)
	err := n.Register(a, 5, 0)
	assert.ErrorIs(t, err, errors.ErrInvalidArgument)
}
