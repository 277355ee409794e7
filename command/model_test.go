package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const delta = 1e-9

func TestNewModel(t *testing.T) {
	m := NewModel()
	assert.Equal(t, State{Gear: Drive}, m.State())

	// no pedal: idle creep guard holds the car
	s := m.Step(None)
	assert.Equal(t, 0.0, s.Throttle)
	assert.Equal(t, IdleHoldBrake, s.Brake)
}

func TestAccelerate(t *testing.T) {
	m := NewModel()
	s := m.Step(Accelerate)
	assert.InDelta(t, ThrottleStep, s.Throttle, delta)
	assert.Equal(t, 0.0, s.Brake)

	for i := 0; i < 100; i++ {
		s = m.Step(Accelerate)
	}
	assert.Equal(t, 1.0, s.Throttle, "throttle should be clamped")
}

func TestBrake(t *testing.T) {
	m := NewModel()
	m.Reset(State{Throttle: 0.1})
	s := m.Step(Brake)
	assert.InDelta(t, 0.1-2*ThrottleStep, s.Throttle, delta)
	assert.Equal(t, 1.0, s.Brake)

	// brake is released at the start of the next tick
	s = m.Step(Accelerate)
	assert.InDelta(t, 0.1-ThrottleStep, s.Throttle, delta)
	assert.Equal(t, 0.0, s.Brake)

	m.Reset(State{})
	s = m.Step(Brake)
	assert.Equal(t, 0.0, s.Throttle)
	assert.Equal(t, 1.0, s.Brake, "idle guard must not override a pressed brake")
}

func TestSteering(t *testing.T) {
	m := NewModel()
	s := m.Step(SteerLeft)
	assert.InDelta(t, -SteerStep, s.Steering, delta)
	s = m.Step(SteerRight)
	s = m.Step(SteerRight)
	assert.InDelta(t, SteerStep, s.Steering, delta)

	for i := 0; i < 100; i++ {
		s = m.Step(SteerLeft)
	}
	assert.Equal(t, -MaxSteer, s.Steering)
	for i := 0; i < 100; i++ {
		s = m.Step(SteerRight)
	}
	assert.Equal(t, MaxSteer, s.Steering)
}

func TestHeadlightsEdgeTriggered(t *testing.T) {
	m := NewModel()
	toggles := 0
	prev := m.State().HeadlightsOn
	for i := 0; i < 5; i++ {
		s := m.Step(ToggleHeadlights)
		if s.HeadlightsOn != prev {
			toggles++
		}
		prev = s.HeadlightsOn
	}
	assert.Equal(t, 1, toggles)
	assert.True(t, m.State().HeadlightsOn)

	m.Step(None)
	assert.True(t, m.State().HeadlightsOn)
	m.Step(ToggleHeadlights)
	assert.False(t, m.State().HeadlightsOn)
}

func TestShiftKeepsPedals(t *testing.T) {
	m := NewModel()
	m.Reset(State{Throttle: 0.5, Steering: 0.2, Gear: Drive})

	s := m.Step(ShiftReverse)
	assert.Equal(t, Reverse, s.Gear)
	assert.InDelta(t, 0.5*throttleDecay, s.Throttle, delta)
	assert.InDelta(t, 0.2*steerDecay, s.Steering, delta)

	s = m.Step(ShiftDrive)
	assert.Equal(t, Drive, s.Gear)
	assert.True(t, s.Throttle > 0)
}

func TestIndicatorIsTransient(t *testing.T) {
	m := NewModel()
	assert.Equal(t, IndicatorLeft, m.Step(ToggleBlinkerLeft).Indicator)
	assert.Equal(t, IndicatorRight, m.Step(ToggleBlinkerRight).Indicator)
	assert.Equal(t, IndicatorOff, m.Step(None).Indicator)
}

func TestCoastDecay(t *testing.T) {
	m := NewModel()
	m.Reset(State{Throttle: 1.0, Steering: 0.3, Gear: Drive})

	prev := m.State()
	for i := 0; i < 10; i++ {
		s := m.Step(None)
		assert.True(t, s.Throttle < prev.Throttle, "throttle should decay on tick %d", i)
		assert.True(t, s.Steering < prev.Steering, "steering should decay on tick %d", i)
		assert.True(t, s.Steering > 0)
		assert.Equal(t, 0.0, s.Brake)
		prev = s
	}

	engaged := false
	for i := 0; i < 200; i++ {
		s := m.Step(None)
		if s.Brake != 0 {
			assert.True(t, prev.Throttle*throttleDecay < idleThrottle)
			assert.Equal(t, 0.0, s.Throttle)
			assert.Equal(t, IdleHoldBrake, s.Brake)
			engaged = true
			break
		}
		assert.True(t, s.Throttle >= idleThrottle)
		prev = s
	}
	assert.True(t, engaged, "idle creep guard never engaged")
}

func TestReset(t *testing.T) {
	m := NewModel()
	m.Step(ToggleHeadlights)
	m.Reset(State{Throttle: 2, Brake: -1, Steering: -3})
	assert.Equal(t, State{Throttle: 1, Brake: 0, Steering: -MaxSteer, Gear: Drive}, m.State())

	// previous event is forgotten, so a held key toggles again
	m.Step(ToggleHeadlights)
	assert.True(t, m.State().HeadlightsOn)
}
