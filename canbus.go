package telelink

import (
	"context"
	"sync"

	"github.com/jd3nn1s/telelink/canlink"
	"github.com/jd3nn1s/telelink/command"
	"github.com/pkg/errors"
)

var canBusConnect = func(p string) (CANBus, error) {
	return canlink.Connect(p)
}

// CANBusRetryable keeps a CAN connection open for Retry and lets other
// goroutines send on whichever connection is current.
type CANBusRetryable struct {
	portName string

	mu sync.Mutex
	c  CANBus
}

func NewCANBus(portName string) *CANBusRetryable {
	return &CANBusRetryable{
		portName: portName,
	}
}

func (bus *CANBusRetryable) Open() error {
	c, err := canBusConnect(bus.portName)
	if err != nil {
		return err
	}
	bus.mu.Lock()
	bus.c = c
	bus.mu.Unlock()
	return nil
}

func (bus *CANBusRetryable) Close() error {
	bus.mu.Lock()
	c := bus.c
	bus.c = nil
	bus.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func (bus *CANBusRetryable) Start(ctx context.Context) error {
	c := bus.CANBus()
	if c == nil {
		return errors.New("canbus is not initialized")
	}
	return c.Start(ctx)
}

func (bus *CANBusRetryable) Name() string {
	return "canbus"
}

// CANBus returns the open connection or nil.
func (bus *CANBusRetryable) CANBus() CANBus {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	return bus.c
}

// Actuate sends the command state, making the bus a command.Actuator.
func (bus *CANBusRetryable) Actuate(s command.State) error {
	c := bus.CANBus()
	if c == nil {
		return errors.New("canbus is not initialized")
	}
	return errors.Wrap(c.SendCommand(s), "unable to send command to CAN bus")
}
