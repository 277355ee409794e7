package command

import "math"

const (
	ThrottleStep  = 0.02
	SteerStep     = 0.02
	MaxSteer      = 0.5
	IdleHoldBrake = 0.1

	steerDecay    = 0.9
	throttleDecay = 0.95
	idleThrottle  = 0.01
	brakeThrottle = 2 * ThrottleStep
	fullBrake     = 1.0
)

type Gear int

const (
	Reverse Gear = -1
	Drive   Gear = 1
)

func (g Gear) String() string {
	if g == Reverse {
		return "R"
	}
	return "D"
}

type Indicator int

const (
	IndicatorOff Indicator = iota
	IndicatorLeft
	IndicatorRight
)

// State is the command payload sent to the actuators every tick.
type State struct {
	Throttle     float64
	Brake        float64
	Steering     float64
	HeadlightsOn bool
	Gear         Gear
	Indicator    Indicator
}

// Model integrates events into a State. It is not safe for concurrent use;
// it is meant to be driven from a single tick loop.
type Model struct {
	state State
	prev  Event
}

func NewModel() *Model {
	m := &Model{}
	m.Reset(State{Gear: Drive})
	return m
}

func (m *Model) State() State {
	return m.state
}

// Reset reinitializes the model, clamping s into range.
func (m *Model) Reset(s State) {
	if s.Gear != Reverse {
		s.Gear = Drive
	}
	s.Throttle = clamp(s.Throttle, 0, 1)
	s.Brake = clamp(s.Brake, 0, 1)
	s.Steering = clamp(s.Steering, -MaxSteer, MaxSteer)
	m.state = s
	m.prev = None
}

// Step applies the event held during this tick and returns the new state.
func (m *Model) Step(ev Event) State {
	s := &m.state
	s.Brake = 0
	s.Indicator = IndicatorOff

	switch ev {
	case Accelerate:
		s.Throttle += ThrottleStep
	case Brake:
		s.Throttle -= brakeThrottle
		s.Brake = fullBrake
	case SteerLeft:
		s.Steering -= SteerStep
	case SteerRight:
		s.Steering += SteerStep
	default:
		s.Steering *= steerDecay
		s.Throttle *= throttleDecay
	}

	switch ev {
	case ShiftReverse:
		s.Gear = Reverse
	case ShiftDrive:
		s.Gear = Drive
	case ToggleBlinkerLeft:
		s.Indicator = IndicatorLeft
	case ToggleBlinkerRight:
		s.Indicator = IndicatorRight
	case ToggleHeadlights:
		if m.prev != ToggleHeadlights {
			s.HeadlightsOn = !s.HeadlightsOn
		}
	}
	m.prev = ev

	s.Throttle = clamp(s.Throttle, 0, 1)
	s.Brake = clamp(s.Brake, 0, 1)
	s.Steering = clamp(s.Steering, -MaxSteer, MaxSteer)

	// hold the car against idle creep when no pedal is pressed
	if s.Throttle < idleThrottle && s.Brake == 0 {
		s.Throttle = 0
		s.Brake = IdleHoldBrake
	}
	return *s
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
