package command

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Actuator forwards one State per tick to the vehicle.
type Actuator interface {
	Actuate(State) error
}

// LogActuator only logs the commands it receives.
type LogActuator struct{}

func (LogActuator) Actuate(s State) error {
	log.WithField("throttle", s.Throttle).
		WithField("brake", s.Brake).
		WithField("steering", s.Steering).
		WithField("gear", s.Gear).
		WithField("headlights", s.HeadlightsOn).
		Info("command")
	return nil
}

// Run steps m once per tick with the event sampled at that tick and hands
// the result to act until ctx is done. Actuation failures are logged and the
// loop continues with the next tick.
func Run(ctx context.Context, tickInterval time.Duration, m *Model, sample func(time.Time) Event, act Actuator) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s := m.Step(sample(now))
			if err := act.Actuate(s); err != nil {
				log.WithField("err", err).Warn("unable to actuate command")
			}
		}
	}
}
