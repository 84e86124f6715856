package checkout

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdown_FiresOnce(t *testing.T) {
	var fires, ticks atomic.Int32

	c := StartCountdown(30*time.Millisecond, 10*time.Millisecond,
		func(int) { ticks.Add(1) },
		func() { fires.Add(1) },
	)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("countdown never finished")
	}

	assert.Equal(t, int32(1), fires.Load())
	assert.Equal(t, int32(2), ticks.Load())
	assert.True(t, c.Fired())
	assert.Equal(t, 0, c.Remaining())
	assert.False(t, c.Stop(), "stop after fire must report false")
}

func TestCountdown_StopPreventsFire(t *testing.T) {
	var fires atomic.Int32

	c := StartCountdown(time.Second, 500*time.Millisecond, nil, func() { fires.Add(1) })
	require.True(t, c.Stop())
	assert.False(t, c.Stop(), "second stop is a no-op")

	<-c.Done()
	assert.Equal(t, int32(0), fires.Load())
	assert.False(t, c.Fired())
}

func TestCountdown_RoundsUpPartialTick(t *testing.T) {
	c := StartCountdown(25*time.Millisecond, 10*time.Millisecond, nil, nil)
	assert.Equal(t, 3, c.Remaining())
	<-c.Done()
}
