package telelink

import (
	"context"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultTickInterval = 100 * time.Millisecond

	minSpeedDelta = -1.0
	maxSpeedDelta = 1.5

	// the wheel sensor reports a fault during every second divisible by this
	wheelFaultPeriod = 12
)

// Producer simulates the vehicle's speed and wheel sensor.
type Producer struct {
	speed float64

	// to allow testing
	delta func() float64
	now   func() time.Time
}

func NewProducer() *Producer {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Producer{
		delta: func() float64 {
			return minSpeedDelta + rnd.Float64()*(maxSpeedDelta-minSpeedDelta)
		},
		now: time.Now,
	}
}

// Speed returns the speed emitted by the last tick.
func (p *Producer) Speed() float64 {
	return p.speed
}

// Tick advances the simulation by one step from previousSpeed.
func (p *Producer) Tick(previousSpeed float64) Telemetry {
	return NewTelemetry(previousSpeed+p.delta(), WheelSensorOK(p.now()))
}

// WheelSensorOK is false for the whole of any second whose unix time is a
// multiple of twelve.
func WheelSensorOK(t time.Time) bool {
	return t.Unix()%wheelFaultPeriod != 0
}

// Run ticks until ctx is done, handing every reading to broadcast.
func (p *Producer) Run(ctx context.Context, tickInterval time.Duration, broadcast func(Telemetry)) error {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	log.WithField("interval", tickInterval).Info("producer started")
	for {
		select {
		case <-ctx.Done():
			log.Infof("producer stopped: %v", ctx.Err())
			return ctx.Err()
		default:
		}
		t := p.Tick(p.speed)
		p.speed = t.Speed
		if !t.WheelSensor {
			log.WithField("speed", t.Speed).Debug(t.Warning)
		}
		broadcast(t)

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
}
