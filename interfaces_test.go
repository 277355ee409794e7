package telelink

import (
	"context"

	"github.com/jd3nn1s/telelink/command"
)

type canBusStub struct {
	startChan chan struct{}
	closed    bool

	speed          int
	speedCallCount int
	commands       []command.State
	sendErr        error
}

func createCANBusStub() *canBusStub {
	return &canBusStub{
		startChan: make(chan struct{}, 1),
	}
}

func (c *canBusStub) Close() error {
	c.closed = true
	return nil
}

func (c *canBusStub) Start(ctx context.Context) error {
	select {
	case c.startChan <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *canBusStub) SendSpeed(speed int) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.speedCallCount++
	c.speed = speed
	return nil
}

func (c *canBusStub) SendCommand(s command.State) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.commands = append(c.commands, s)
	return nil
}

type forwarderStub struct {
	telemetry []Telemetry
	prev      []Telemetry
	err       error
}

func (fwd *forwarderStub) Forward(newTelemetry *Telemetry, prevTelemetry *Telemetry) error {
	fwd.telemetry = append(fwd.telemetry, *newTelemetry)
	fwd.prev = append(fwd.prev, *prevTelemetry)
	return fwd.err
}
