package channel

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/frame"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const readBufferSize = 1024

// Session is one live connection between the producer and a consumer.
type Session struct {
	ID string

	conn    net.Conn
	partial []byte
	alive   atomic.Bool
	// nil on the consumer side, which only receives
	out  *outbox
	once sync.Once
}

func newSession(conn net.Conn) *Session {
	s := &Session{
		ID:   uuid.NewString(),
		conn: conn,
	}
	s.alive.Store(true)
	return s
}

// newProducerSession returns a session that can also send frames.
func newProducerSession(conn net.Conn, queueSize int) *Session {
	s := newSession(conn)
	s.out = newOutbox(queueSize)
	return s
}

// to allow testing
var dialer = func(ctx context.Context, address string) (net.Conn, error) {
	d := net.Dialer{}
	return d.DialContext(ctx, "tcp", address)
}

// Dial connects to a producer listening on address.
func Dial(ctx context.Context, address string) (*Session, error) {
	conn, err := dialer(ctx, address)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to connect to %s", address)
	}
	return newSession(conn), nil
}

func (s *Session) Alive() bool {
	return s.alive.Load()
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Dropped returns how many frames were discarded because the consumer was
// too slow.
func (s *Session) Dropped() uint64 {
	if s.out == nil {
		return 0
	}
	return s.out.dropped()
}

// Close marks the session dead and releases its connection. Safe to call
// more than once.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		s.alive.Store(false)
		if s.out != nil {
			s.out.close()
		}
		err = s.conn.Close()
	})
	return err
}

// send queues a frame for the writer. It reports false if the session is
// dead.
func (s *Session) send(frame []byte) bool {
	if !s.Alive() || s.out == nil {
		return false
	}
	if s.out.push(frame) {
		log.WithField("session", s.ID).Debug("consumer too slow, dropped oldest frame")
	}
	return true
}

// writeLoop drains the outbox until the session closes or a write fails.
func (s *Session) writeLoop() error {
	if s.out == nil {
		return nil
	}
	for {
		frame, ok := s.out.pop()
		if !ok {
			return nil
		}
		if _, err := s.conn.Write(frame); err != nil {
			s.alive.Store(false)
			return errors.Wrap(err, "unable to write frame")
		}
	}
}

// ReceiveLoop reads frames until the connection ends or ctx is done,
// calling onFrame for every decoded record in the order received. Malformed
// frames are logged and skipped. The session is dead when ReceiveLoop
// returns; io.EOF is returned when the peer closed the connection.
func (s *Session) ReceiveLoop(ctx context.Context, onFrame func(telelink.Telemetry)) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-stop:
		}
	}()
	defer s.Close()

	onError := func(err error) {
		log.WithField("session", s.ID).WithField("err", err).Warn("dropping frame")
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.partial = frame.DecodeAll(append(s.partial, buf[:n]...), onFrame, onError)
		}
		if err != nil {
			s.alive.Store(false)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err == io.EOF {
				return err
			}
			return errors.Wrap(err, "connection lost")
		}
	}
}
