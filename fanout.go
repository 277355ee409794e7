package telelink

import (
	log "github.com/sirupsen/logrus"
)

// Fanout passes each reading from the producer to every forwarder. A failing
// forwarder is logged and does not affect the others.
type Fanout struct {
	forwarders []Forwarder
	telemetry  Telemetry
}

func NewFanout() *Fanout {
	return &Fanout{}
}

func (f *Fanout) AddForwarder(fwd Forwarder) {
	f.forwarders = append(f.forwarders, fwd)
}

// Broadcast has the signature expected by Producer.Run.
func (f *Fanout) Broadcast(t Telemetry) {
	prev := f.telemetry
	f.telemetry = t
	for _, fwd := range f.forwarders {
		if err := fwd.Forward(&t, &prev); err != nil {
			log.WithField("err", err).Warn("unable to forward telemetry")
		}
	}
}
