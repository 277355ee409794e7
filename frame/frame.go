// Package frame encodes telemetry as newline delimited JSON objects.
//
// A frame is one JSON object carrying exactly the fields speed, wheel_sensor
// and warning, followed by a single '\n'. JSON encoding escapes control
// characters inside strings, so the delimiter never appears in a payload.
package frame

import (
	"bytes"
	"encoding/json"

	"github.com/jd3nn1s/telelink"
	"github.com/pkg/errors"
)

const (
	Delimiter = '\n'

	// MaxFrameSize bounds how many bytes may accumulate without a delimiter.
	MaxFrameSize = 4096
)

var ErrMalformedFrame = errors.New("malformed frame")

type payload struct {
	Speed       float64 `json:"speed"`
	WheelSensor bool    `json:"wheel_sensor"`
	Warning     string  `json:"warning"`
}

// Encode returns t as a complete frame, delimiter included.
func Encode(t telelink.Telemetry) ([]byte, error) {
	data, err := json.Marshal(payload{
		Speed:       t.Speed,
		WheelSensor: t.WheelSensor,
		Warning:     t.Warning,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode telemetry")
	}
	return append(data, Delimiter), nil
}

// Decode parses the first frame in buf.
//
// If buf holds no complete frame it returns a nil record and buf unchanged.
// Otherwise the bytes after the delimiter are returned as the remainder,
// even when the frame itself is malformed, so the caller can drop it and
// carry on. Malformed frames are reported with an error whose cause is
// ErrMalformedFrame.
func Decode(buf []byte) (*telelink.Telemetry, []byte, error) {
	i := bytes.IndexByte(buf, Delimiter)
	if i < 0 {
		if len(buf) > MaxFrameSize {
			return nil, nil, errors.Wrapf(ErrMalformedFrame, "no delimiter in %d bytes", len(buf))
		}
		return nil, buf, nil
	}
	rest := buf[i+1:]
	t, err := parse(buf[:i])
	if err != nil {
		return nil, rest, err
	}
	return t, rest, nil
}

// parse matches field names exactly; encoding/json alone would also accept
// "SPEED" or "Warning".
func parse(data []byte) (*telelink.Telemetry, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrapf(ErrMalformedFrame, "%v", err)
	}
	t := telelink.Telemetry{}
	if err := field(fields, "speed", &t.Speed); err != nil {
		return nil, err
	}
	if err := field(fields, "wheel_sensor", &t.WheelSensor); err != nil {
		return nil, err
	}
	if err := field(fields, "warning", &t.Warning); err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, errors.Wrapf(ErrMalformedFrame, "%v", err)
	}
	return &t, nil
}

func field(fields map[string]json.RawMessage, name string, v interface{}) error {
	raw, ok := fields[name]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return errors.Wrapf(ErrMalformedFrame, "missing %s", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(ErrMalformedFrame, "%s: %v", name, err)
	}
	return nil
}

// DecodeAll decodes every complete frame in buf in order, calling onFrame
// for each record and onError for each malformed frame. It returns the
// bytes of the trailing partial frame.
func DecodeAll(buf []byte, onFrame func(telelink.Telemetry), onError func(error)) []byte {
	for {
		t, rest, err := Decode(buf)
		buf = rest
		switch {
		case err != nil:
			if onError != nil {
				onError(err)
			}
		case t == nil:
			return buf
		default:
			onFrame(*t)
		}
	}
}
