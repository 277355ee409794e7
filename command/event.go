package command

import "unicode"

// Event is the input held during one tick.
type Event int

const (
	None Event = iota
	Accelerate
	Brake
	SteerLeft
	SteerRight
	ShiftReverse
	ShiftDrive
	ToggleBlinkerLeft
	ToggleBlinkerRight
	ToggleHeadlights
)

var eventNames = map[Event]string{
	None:               "None",
	Accelerate:         "Accelerate",
	Brake:              "Brake",
	SteerLeft:          "Steer Left",
	SteerRight:         "Steer Right",
	ShiftReverse:       "Reverse",
	ShiftDrive:         "Drive",
	ToggleBlinkerLeft:  "Blinker Left",
	ToggleBlinkerRight: "Blinker Right",
	ToggleHeadlights:   "Headlights",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return "Unknown"
}

var keyEvents = map[rune]Event{
	'w': Accelerate,
	's': Brake,
	'a': SteerLeft,
	'd': SteerRight,
	'r': ShiftReverse,
	'f': ShiftDrive,
	'q': ToggleBlinkerLeft,
	'e': ToggleBlinkerRight,
	'l': ToggleHeadlights,
}

// ParseKey maps a keyboard key to its event. Unknown keys map to None.
func ParseKey(r rune) Event {
	if ev, ok := keyEvents[unicode.ToLower(r)]; ok {
		return ev
	}
	return None
}
