// Package input defines the per-frame input a viewer session consumes and
// headless sources that produce it.
package input

// Axes are movement intents along the camera's own axes; 1 moves at the
// camera's full speed.
type Axes struct {
	Forward float64
	Right   float64
	Up      float64
}

// Look is a raw look delta; the camera scales it by its sensitivity.
type Look struct {
	Yaw   float64
	Pitch float64
}

// Size is a surface resolution in pixels.
type Size struct {
	Width  int
	Height int
}

// Frame is everything the input collaborator reports for one frame.
type Frame struct {
	Quit      bool
	Move      Axes
	Look      Look
	Zoom      float64 // positive narrows the field of view
	Resize    *Size   // non-nil when the surface changed size
	DeltaTime float64 // seconds since the previous frame
}

// Source is polled once per frame, before anything is drawn.
type Source interface {
	Poll() Frame
}

// Scripted replays a fixed list of frames and then reports quit.
type Scripted struct {
	frames []Frame
	next   int
}

// NewScripted returns a source replaying frames in order.
func NewScripted(frames ...Frame) *Scripted {
	return &Scripted{frames: frames}
}

// Poll implements Source.
func (s *Scripted) Poll() Frame {
	if s.next >= len(s.frames) {
		return Frame{Quit: true}
	}
	f := s.frames[s.next]
	s.next++
	return f
}

// Remaining returns how many scripted frames have not been polled.
func (s *Scripted) Remaining() int {
	return len(s.frames) - s.next
}

// Orbit circles the camera around whatever it is looking at by strafing
// right while turning left, for a fixed number of frames.
type Orbit struct {
	Frames    int
	Strafe    float64 // right axis per frame
	Yaw       float64 // look delta per frame, negative turns left
	DeltaTime float64

	polled int
}

// Poll implements Source.
func (o *Orbit) Poll() Frame {
	if o.polled >= o.Frames {
		return Frame{Quit: true}
	}
	o.polled++
	return Frame{
		Move:      Axes{Right: o.Strafe},
		Look:      Look{Yaw: o.Yaw},
		DeltaTime: o.DeltaTime,
	}
}
