package channel

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/frame"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// pause after an accept error other than a closed listener, e.g. EMFILE
var acceptBackoff = 100 * time.Millisecond

// Channel owns the listener and every consumer session.
type Channel struct {
	listener  net.Listener
	queueSize int

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	wg sync.WaitGroup
}

// Listen binds address. A failure here is a configuration error.
func Listen(address string, queueSize int) (*Channel, error) {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on %s", address)
	}
	ch := newChannel(queueSize)
	ch.listener = l
	return ch, nil
}

func newChannel(queueSize int) *Channel {
	return &Channel{
		queueSize: queueSize,
		sessions:  make(map[string]*Session),
	}
}

func (ch *Channel) Addr() net.Addr {
	return ch.listener.Addr()
}

// Accept blocks until one consumer connects and registers it.
func (ch *Channel) Accept() (*Session, error) {
	conn, err := ch.listener.Accept()
	if err != nil {
		return nil, err
	}
	s, err := ch.addSession(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	log.WithField("session", s.ID).
		WithField("remote", conn.RemoteAddr()).
		Info("consumer connected")
	return s, nil
}

// Serve accepts consumers until ctx is done.
func (ch *Channel) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			if err := ch.listener.Close(); err != nil {
				log.WithField("err", err).Warn("unable to close listener")
			}
		case <-stop:
		}
	}()

	log.WithField("address", ch.Addr()).Info("waiting for consumers")
	for {
		if _, err := ch.Accept(); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.WithField("err", err).Warn("unable to accept consumer")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(acceptBackoff):
			}
		}
	}
}

func (ch *Channel) addSession(conn net.Conn) (*Session, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.closed {
		return nil, errors.New("channel closed")
	}
	s := newProducerSession(conn, ch.queueSize)
	ch.sessions[s.ID] = s

	ch.wg.Add(1)
	go func() {
		defer ch.wg.Done()
		if err := s.writeLoop(); err != nil {
			log.WithField("session", s.ID).WithField("err", err).Info("consumer disconnected")
		}
		ch.remove(s)
	}()
	return s, nil
}

func (ch *Channel) remove(s *Session) {
	ch.mu.Lock()
	delete(ch.sessions, s.ID)
	ch.mu.Unlock()
	_ = s.Close()
}

// Broadcast queues frame for every live session and drops dead ones. It
// never blocks on a consumer.
func (ch *Channel) Broadcast(frame []byte) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	for id, s := range ch.sessions {
		if !s.send(frame) {
			delete(ch.sessions, id)
			_ = s.Close()
			log.WithField("session", id).Debug("removed dead session")
		}
	}
}

// Forward encodes the new reading and broadcasts it.
func (ch *Channel) Forward(newTelemetry *telelink.Telemetry, prevTelemetry *telelink.Telemetry) error {
	data, err := frame.Encode(*newTelemetry)
	if err != nil {
		return err
	}
	ch.Broadcast(data)
	return nil
}

// Sessions returns the number of registered sessions.
func (ch *Channel) Sessions() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.sessions)
}

// Close stops accepting and disconnects every consumer.
func (ch *Channel) Close() error {
	ch.mu.Lock()
	ch.closed = true
	sessions := ch.sessions
	ch.sessions = make(map[string]*Session)
	ch.mu.Unlock()

	var err error
	if ch.listener != nil {
		err = ch.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	for _, s := range sessions {
		_ = s.Close()
	}
	ch.wg.Wait()
	return err
}
