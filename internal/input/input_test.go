package input

import (
	"testing"

	"go.viam.com/test"
)

func TestScripted(t *testing.T) {
	resize := &Size{Width: 320, Height: 200}
	s := NewScripted(Frame{Zoom: 1}, Frame{Resize: resize})
	test.That(t, s.Remaining(), test.ShouldEqual, 2)
	test.That(t, s.Poll().Zoom, test.ShouldEqual, 1.0)
	test.That(t, s.Poll().Resize, test.ShouldEqual, resize)
	test.That(t, s.Remaining(), test.ShouldEqual, 0)
	test.That(t, s.Poll().Quit, test.ShouldBeTrue)
	test.That(t, s.Poll().Quit, test.ShouldBeTrue)
}

func TestOrbit(t *testing.T) {
	o := &Orbit{Frames: 3, Strafe: 0.5, Yaw: -2, DeltaTime: 0.1}
	for i := 0; i < 3; i++ {
		f := o.Poll()
		test.That(t, f.Quit, test.ShouldBeFalse)
		test.That(t, f.Move.Right, test.ShouldEqual, 0.5)
		test.That(t, f.Look.Yaw, test.ShouldEqual, -2.0)
		test.That(t, f.DeltaTime, test.ShouldEqual, 0.1)
	}
	test.That(t, o.Poll().Quit, test.ShouldBeTrue)
}
