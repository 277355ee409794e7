// Package dashboard is the presentation side of the telemetry link. All of
// its state belongs to the goroutine running Dashboard.Run.
package dashboard

import (
	"context"
	"fmt"
	"io"

	"github.com/jd3nn1s/telelink"
	"github.com/jd3nn1s/telelink/command"
)

const (
	StatusOK      = "SYSTEM OK"
	StatusFailure = "SENSOR FAILURE"
)

// View is everything the dashboard shows.
type View struct {
	Speed       int
	Status      string
	Failure     bool
	DriverInput string
}

func (v View) String() string {
	return fmt.Sprintf("%3d km/h | %-14s | Driver Input: %s", v.Speed, v.Status, v.DriverInput)
}

type Renderer interface {
	Render(View)
}

// Source is the hand-off queue filled by the network goroutine.
type Source interface {
	Ready() <-chan struct{}
	Drain(func(telelink.Telemetry)) int
}

type Dashboard struct {
	view     View
	renderer Renderer
}

func New(renderer Renderer) *Dashboard {
	return &Dashboard{
		view: View{
			Status:      StatusOK,
			DriverInput: command.None.String(),
		},
		renderer: renderer,
	}
}

func (d *Dashboard) View() View {
	return d.view
}

// Present shows one reading. Call it only from the presentation goroutine.
func (d *Dashboard) Present(t telelink.Telemetry) {
	d.view.Speed = int(t.Speed)
	d.view.Failure = t.Warning != ""
	if d.view.Failure {
		d.view.Status = StatusFailure
	} else {
		d.view.Status = StatusOK
	}
}

// SetDriverInput shows the pedal or steering key being pressed. Other
// events leave the label unchanged.
func (d *Dashboard) SetDriverInput(ev command.Event) {
	switch ev {
	case command.Accelerate, command.Brake, command.SteerLeft, command.SteerRight:
		d.view.DriverInput = ev.String()
	}
}

// Run is the presentation goroutine. It drains src and inputs and renders
// after every change until ctx is done.
func (d *Dashboard) Run(ctx context.Context, src Source, inputs <-chan command.Event) error {
	d.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-src.Ready():
			if src.Drain(d.Present) == 0 {
				continue
			}
		case ev := <-inputs:
			d.SetDriverInput(ev)
		}
		d.render()
	}
}

func (d *Dashboard) render() {
	if d.renderer != nil {
		d.renderer.Render(d.view)
	}
}

// WriterRenderer prints a line whenever the view changes.
type WriterRenderer struct {
	W    io.Writer
	last *View
}

func (r *WriterRenderer) Render(v View) {
	if r.last != nil && *r.last == v {
		return
	}
	r.last = &v
	fmt.Fprintln(r.W, v)
}
