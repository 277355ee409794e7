package telelink

import (
	"context"

	"github.com/jd3nn1s/telelink/command"
)

// Forwarder receives every reading together with the one before it.
type Forwarder interface {
	Forward(newTelemetry *Telemetry, prevTelemetry *Telemetry) error
}

type CANBus interface {
	Close() error
	Start(context.Context) error
	SendSpeed(int) error
	SendCommand(command.State) error
}
