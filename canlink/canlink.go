// Package canlink publishes vehicle commands and the simulated speed on a
// SocketCAN bus.
package canlink

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/brutella/can"
	"github.com/jd3nn1s/telelink/command"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	frameSpeed   uint32 = 0x103
	frameCommand uint32 = 0x110

	commandLength = 6
)

// flag bits of the command frame
const (
	flagHeadlights = 1 << iota
	flagReverse
	flagIndicatorLeft
	flagIndicatorRight
)

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

type Connection struct {
	bus CANBus
}

// to allow testing
var newBus = func(portName string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(portName)
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open can interface %s", portName)
	}
	return &Connection{
		bus: bus,
	}, nil
}

// Start services the bus until it is disconnected or ctx is done.
func (c *Connection) Start(ctx context.Context) error {
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("CAN bus opened and subscribed")

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			log.Infof("stopping can bus: %v", ctx.Err())
			if err := c.bus.Disconnect(); err != nil {
				log.WithField("err", err).Warn("unable to disconnect canbus after context")
			}
		case <-stop:
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) SendSpeed(speed int) error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	log.WithField("speed", speed).Debug("sending speed over canbus")
	return c.bus.Publish(can.Frame{
		ID:     frameSpeed,
		Length: 1,
		Data:   [8]uint8{uint8(speed)},
	})
}

// SendCommand publishes s as a command frame:
//
//	byte 0    throttle, percent
//	byte 1    brake, percent
//	byte 2-3  steering, milliradians, little endian int16
//	byte 4    gear flags
//	byte 5    reserved
func (c *Connection) SendCommand(s command.State) error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Publish(EncodeCommand(s))
}

func EncodeCommand(s command.State) can.Frame {
	data := [8]uint8{}
	data[0] = percent(s.Throttle)
	data[1] = percent(s.Brake)
	binary.LittleEndian.PutUint16(data[2:4], uint16(int16(math.Round(s.Steering*1000))))

	var flags uint8
	if s.HeadlightsOn {
		flags |= flagHeadlights
	}
	if s.Gear == command.Reverse {
		flags |= flagReverse
	}
	switch s.Indicator {
	case command.IndicatorLeft:
		flags |= flagIndicatorLeft
	case command.IndicatorRight:
		flags |= flagIndicatorRight
	}
	data[4] = flags

	return can.Frame{
		ID:     frameCommand,
		Length: commandLength,
		Data:   data,
	}
}

func percent(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(v, 1)) * 100))
}

func (c *Connection) handleFrame(frame can.Frame) {
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received canbus frame")
}
