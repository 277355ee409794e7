package telelink

import (
	"math"

	"github.com/pkg/errors"
)

const (
	MinSpeed = 0.0
	MaxSpeed = 100.0

	// WarningWheelSensor is reported whenever the wheel sensor is faulted.
	WarningWheelSensor = "WHEEL SENSOR TIMEOUT"
)

// Telemetry is a single sensor reading. Values are copied, never shared.
type Telemetry struct {
	Speed       float64
	WheelSensor bool
	Warning     string
}

// NewTelemetry clamps and rounds speed and derives the warning from the
// wheel sensor state.
func NewTelemetry(speed float64, wheelSensorOK bool) Telemetry {
	t := Telemetry{
		Speed:       roundSpeed(clampSpeed(speed)),
		WheelSensor: wheelSensorOK,
	}
	if !wheelSensorOK {
		t.Warning = WarningWheelSensor
	}
	return t
}

func (t Telemetry) Validate() error {
	if math.IsNaN(t.Speed) || t.Speed < MinSpeed || t.Speed > MaxSpeed {
		return errors.Errorf("speed %v outside [%v, %v]", t.Speed, MinSpeed, MaxSpeed)
	}
	if t.WheelSensor && t.Warning != "" {
		return errors.Errorf("unexpected warning %q with healthy wheel sensor", t.Warning)
	}
	if !t.WheelSensor && t.Warning != WarningWheelSensor {
		return errors.Errorf("warning %q for faulted wheel sensor, want %q", t.Warning, WarningWheelSensor)
	}
	return nil
}

func clampSpeed(v float64) float64 {
	return math.Max(MinSpeed, math.Min(v, MaxSpeed))
}

// one decimal
func roundSpeed(v float64) float64 {
	return math.Round(v*10) / 10
}
