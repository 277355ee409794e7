package telelink

import (
	"math"

	"github.com/pkg/errors"
)

// CANForwarder mirrors speed changes onto the CAN bus.
type CANForwarder struct {
	canBus *CANBusRetryable
}

func NewCANForwarder(bus *CANBusRetryable) *CANForwarder {
	return &CANForwarder{
		canBus: bus,
	}
}

func (fwd *CANForwarder) Forward(newTelemetry *Telemetry, prevTelemetry *Telemetry) error {
	speed := int(math.Round(newTelemetry.Speed))
	if speed == int(math.Round(prevTelemetry.Speed)) {
		return nil
	}
	canBus := fwd.canBus.CANBus()
	if canBus == nil {
		return errors.New("canbus is not initialized")
	}
	if err := canBus.SendSpeed(speed); err != nil {
		return errors.Wrapf(err, "unable to send speed to CAN bus")
	}
	return nil
}
