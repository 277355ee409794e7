package consumer

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/channel"
	"github.com/jd3nn1s/telelink/frame"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startProducer(t *testing.T, ctx context.Context, address string) *channel.Channel {
	ch, err := channel.Listen(address, 8)
	require.NoError(t, err)
	go func() {
		_ = ch.Serve(ctx)
	}()
	return ch
}

func waitForSession(t *testing.T, ch *channel.Channel) {
	assert.Eventually(t, func() bool {
		return ch.Sessions() == 1
	}, 5*time.Second, 5*time.Millisecond)
}

func broadcast(t *testing.T, ch *channel.Channel, tm telelink.Telemetry) {
	data, err := frame.Encode(tm)
	require.NoError(t, err)
	ch.Broadcast(data)
}

func drainUntil(t *testing.T, q *Queue, count int) []telelink.Telemetry {
	var records []telelink.Telemetry
	timeout := time.After(5 * time.Second)
	for len(records) < count {
		select {
		case <-q.Ready():
			q.Drain(func(tm telelink.Telemetry) {
				records = append(records, tm)
			})
		case <-timeout:
			assert.FailNow(t, "timed out waiting for telemetry")
		}
	}
	return records
}

func TestMalformedFrameDoesNotStall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := startProducer(t, ctx, "127.0.0.1:0")
	defer ch.Close()

	c := New(ch.Addr().String(), 10*time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- c.ConnectWithRetry(ctx)
	}()
	waitForSession(t, ch)

	broadcast(t, ch, telelink.NewTelemetry(10.0, true))
	broadcast(t, ch, telelink.NewTelemetry(11.2, true))
	ch.Broadcast([]byte(`{"speed": "BAD", "wheel_sensor": true, "warning": ""}` + "\n"))

	records := drainUntil(t, c.Queue(), 2)
	assert.Equal(t, []telelink.Telemetry{
		{Speed: 10.0, WheelSensor: true},
		{Speed: 11.2, WheelSensor: true},
	}, records)

	// the stream keeps flowing after the bad frame
	broadcast(t, ch, telelink.NewTelemetry(12.0, false))
	records = drainUntil(t, c.Queue(), 1)
	assert.Equal(t, []telelink.Telemetry{
		{Speed: 12.0, Warning: telelink.WarningWheelSensor},
	}, records)
	assert.Equal(t, 0, c.Queue().Len())

	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestConsumerStartsBeforeProducer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(address, 10*time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- c.ConnectWithRetry(ctx)
	}()
	time.Sleep(50 * time.Millisecond)

	ch := startProducer(t, ctx, address)
	waitForSession(t, ch)
	broadcast(t, ch, telelink.NewTelemetry(1, true))
	assert.Equal(t, 1.0, drainUntil(t, c.Queue(), 1)[0].Speed)

	// producer restarts, consumer reconnects
	require.NoError(t, ch.Close())
	ch = startProducer(t, ctx, address)
	defer ch.Close()
	waitForSession(t, ch)
	broadcast(t, ch, telelink.NewTelemetry(2, true))
	assert.Equal(t, 2.0, drainUntil(t, c.Queue(), 1)[0].Speed)

	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestConnectRetriesForever(t *testing.T) {
	origDial := dial
	defer func() {
		dial = origDial
	}()
	var attempts int32
	dial = func(context.Context, string) (*channel.Session, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := New("127.0.0.1:1", time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- c.ConnectWithRetry(ctx)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 5
	}, 5*time.Second, time.Millisecond)
	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestDialTimeoutIndependentOfBackoff(t *testing.T) {
	origDial := dial
	defer func() {
		dial = origDial
	}()
	var attempts, timeouts int32
	dial = func(ctx context.Context, _ string) (*channel.Session, error) {
		select {
		case <-time.After(5 * time.Millisecond):
			atomic.AddInt32(&attempts, 1)
			return nil, errors.New("connection refused")
		case <-ctx.Done():
			atomic.AddInt32(&timeouts, 1)
			return nil, ctx.Err()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := New("127.0.0.1:1", 2*time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- c.ConnectWithRetry(ctx)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&attempts) >= 5
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&timeouts))
	cancel()
	assert.Equal(t, context.Canceled, <-done)
}

func TestShutdownCancelsDial(t *testing.T) {
	origDial := dial
	defer func() {
		dial = origDial
	}()
	dialing := make(chan struct{}, 1)
	dial = func(ctx context.Context, _ string) (*channel.Session, error) {
		select {
		case dialing <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := New("127.0.0.1:1", time.Millisecond)
	c.DialTimeout = time.Hour
	done := make(chan error, 1)
	go func() {
		done <- c.ConnectWithRetry(ctx)
	}()

	<-dialing
	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(5 * time.Second):
		assert.Fail(t, "dial ignored shutdown")
	}
}

func TestStartWithoutSession(t *testing.T) {
	c := New("127.0.0.1:1", 0)
	assert.Equal(t, DefaultBackoff, c.Backoff)
	assert.Equal(t, DefaultDialTimeout, c.DialTimeout)
	assert.NoError(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}
