// Package consumer keeps the dashboard connected to the producer and passes
// received telemetry to the presentation goroutine.
package consumer

import (
	"context"
	"time"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/channel"
	"github.com/pkg/errors"
)

const (
	DefaultBackoff     = time.Second
	DefaultDialTimeout = 5 * time.Second
)

// Consumer connects to a producer, reconnecting whenever the session ends.
type Consumer struct {
	Address     string
	Backoff     time.Duration
	DialTimeout time.Duration

	// cancels a pending dial on shutdown
	ctx     context.Context
	queue   *Queue
	session *channel.Session
}

// to allow testing
var dial = channel.Dial

func New(address string, backoff time.Duration) *Consumer {
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	return &Consumer{
		Address:     address,
		Backoff:     backoff,
		DialTimeout: DefaultDialTimeout,
		queue:       NewQueue(),
	}
}

// Queue returns the hand-off queue drained by the presentation goroutine.
func (c *Consumer) Queue() *Queue {
	return c.queue
}

// ConnectWithRetry runs until ctx is done. The producer may start after the
// consumer, so connection attempts are retried forever.
func (c *Consumer) ConnectWithRetry(ctx context.Context) error {
	c.ctx = ctx
	return telelink.Retry(ctx, c, c.Backoff)
}

func (c *Consumer) Name() string {
	return "consumer"
}

func (c *Consumer) Open() error {
	parent := c.ctx
	if parent == nil {
		parent = context.Background()
	}
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()
	s, err := dial(ctx, c.Address)
	c.session = s
	return err
}

func (c *Consumer) Close() error {
	if c.session == nil {
		return nil
	}
	err := c.session.Close()
	c.session = nil
	return err
}

func (c *Consumer) Start(ctx context.Context) error {
	if c.session == nil {
		return errors.New("not connected")
	}
	err := c.session.ReceiveLoop(ctx, c.onFrame)
	if err == nil {
		err = errors.New("session ended")
	}
	return errors.Wrap(err, "telemetry stream ended")
}

// onFrame runs on the network goroutine and must only enqueue.
func (c *Consumer) onFrame(t telelink.Telemetry) {
	c.queue.Post(t)
}
