// Package command turns discrete driver input events into bounded throttle,
// brake and steering commands.
//
// A Model is advanced once per tick with the event held during that tick.
// Pedal and steering events integrate; when no pedal or steering key is held
// the steering returns toward center and the throttle coasts down. Gear and
// indicator events apply independently of the pedals. Headlights toggle on
// the tick the key goes down, never while it is held.
//
// The resulting State is handed to an Actuator, which forwards it to the
// vehicle. The model never touches actuator handles itself.
package command
