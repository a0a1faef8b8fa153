package dropzone

import "testing"

func TestRectContains(t *testing.T) {
	r := RectFromCorners(0, 0, 100, 100)
	tests := []struct {
		p    Point
		want bool
	}{
		{Point{50, 50}, true},
		{Point{0, 0}, true},
		{Point{100, 100}, true},
		{Point{100.1, 50}, false},
		{Point{-1, 50}, false},
		{Point{500, 500}, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if (Rect{X: 10, Y: 10}).Contains(Point{10, 10}) {
		t.Error("empty rect contains a point")
	}
}

func TestRectFromCornersNormalizes(t *testing.T) {
	r := RectFromCorners(100, 80, 20, 10)
	want := Rect{X: 20, Y: 10, Width: 80, Height: 70}
	if r != want {
		t.Errorf("RectFromCorners = %+v, want %+v", r, want)
	}
}

func TestRectRelative(t *testing.T) {
	r := Rect{X: 20, Y: 30, Width: 100, Height: 100}
	if got := r.Relative(Point{50, 50}); got != (Point{30, 20}) {
		t.Errorf("Relative = %+v", got)
	}
}
