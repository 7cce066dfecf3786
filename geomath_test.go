package osmlr2graph

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestDistanceMeters(t *testing.T) {
	p1 := orb.Point{37.6417350769043, 55.751849391735284}
	p2 := orb.Point{37.668514251708984, 55.73261980350401}
	res := 2716.93096539 // meters
	dist := DistanceMeters(p1, p2)
	if math.Abs(dist-res) > 0.5 {
		t.Errorf("Distance must be %f, but got %f", res, dist)
	}
}

func TestInterpolate(t *testing.T) {
	a := orb.Point{10.0, 10.0}
	b := orb.Point{20.0, 30.0}
	mid := Interpolate(a, b, 0.5)
	correctMid := orb.Point{15.0, 20.0}
	if mid != correctMid {
		t.Errorf("Midpoint must be %v, but got %v", correctMid, mid)
	}
	if Interpolate(a, b, 0.0) != a {
		t.Errorf("Fraction 0 must return the first point")
	}
	if Interpolate(a, b, 1.0) != b {
		t.Errorf("Fraction 1 must return the second point")
	}
}

func TestChopMidSegment(t *testing.T) {
	// three points spaced ~62.6 meters apart along a parallel
	line := orb.LineString{{37.640, 55.75}, {37.641, 55.75}, {37.642, 55.75}}
	total := LengthMeters(line)

	remainder := make(orb.LineString, len(line))
	copy(remainder, line)
	dist := total * 0.4 // inside the first of the two segments
	head := Chop(&remainder, dist)

	if len(head) != 2 {
		t.Errorf("Head should keep the first point plus the split point, got %d points", len(head))
	}
	if len(remainder) != 3 {
		t.Errorf("Remainder should hold the split point and 2 original points, got %d points", len(remainder))
	}
	if head[len(head)-1] != remainder[0] {
		t.Errorf("Split point must be shared between head and remainder")
	}
	headLen := LengthMeters(head)
	if math.Abs(headLen-dist) > 0.01 {
		t.Errorf("Head length must be %f, but got %f", dist, headLen)
	}
}

func TestChopZeroDistance(t *testing.T) {
	line := orb.LineString{{37.640, 55.75}, {37.641, 55.75}}
	head := Chop(&line, 0)
	for _, pt := range head {
		if pt != (orb.Point{37.640, 55.75}) {
			t.Errorf("Zero-distance chop must contain only the first point, got %v", pt)
		}
	}
	if len(line) != 2 {
		t.Errorf("Zero-distance chop must leave the line intact, got %d points", len(line))
	}
}

func TestChopBeyondLength(t *testing.T) {
	original := orb.LineString{{37.640, 55.75}, {37.641, 55.75}, {37.642, 55.75}}
	line := make(orb.LineString, len(original))
	copy(line, original)

	head := Chop(&line, 100000)
	if len(head) != len(original) {
		t.Errorf("Overlong chop must return the whole line, got %d of %d points", len(head), len(original))
	}
	for i := range head {
		if head[i] != original[i] {
			t.Errorf("Point %d must be %v, but got %v", i, original[i], head[i])
		}
	}
	if len(line) != 0 {
		t.Errorf("Overlong chop must consume the line entirely, %d points left", len(line))
	}
}

func TestBearingEast(t *testing.T) {
	line := orb.LineString{{37.640, 55.75}, {37.650, 55.75}}
	bearing := Bearing(line)
	if math.Abs(bearing-90.0) > 0.5 {
		t.Errorf("Bearing must be ~90, but got %f", bearing)
	}
}

func TestBearingLookahead(t *testing.T) {
	// heads north for ~111 meters, then sharply east; the lookahead
	// must see only the northern part
	line := orb.LineString{{37.640, 55.75}, {37.640, 55.751}, {37.740, 55.751}}
	bearing := Bearing(line)
	if math.Abs(bearing-0.0) > 1.0 && math.Abs(bearing-360.0) > 1.0 {
		t.Errorf("Bearing must ignore shape beyond 20 meters, got %f", bearing)
	}
}

func TestBearingShortLine(t *testing.T) {
	// shorter than the 20 meter lookahead
	line := orb.LineString{{37.640, 55.75}, {37.64005, 55.75}}
	bearing := Bearing(line)
	if bearing < 0.0 || bearing >= 360.0 {
		t.Errorf("Bearing must stay in [0;360), got %f", bearing)
	}
}

func TestBearingDegeneratePoints(t *testing.T) {
	line := orb.LineString{{37.640, 55.75}, {37.640, 55.75}}
	bearing := Bearing(line)
	if bearing < 0.0 || bearing >= 360.0 {
		t.Errorf("Bearing must stay in [0;360), got %f", bearing)
	}
}

func TestProjectOntoLine(t *testing.T) {
	line := orb.LineString{{37.640, 55.75}, {37.642, 55.75}}
	pt := orb.Point{37.641, 55.7501}

	projected, dist, along := ProjectOntoLine(pt, line)
	if math.Abs(projected.Lon()-37.641) > 1e-9 {
		t.Errorf("Projection longitude must be 37.641, but got %f", projected.Lon())
	}
	if math.Abs(projected.Lat()-55.75) > 1e-9 {
		t.Errorf("Projection latitude must be 55.75, but got %f", projected.Lat())
	}
	correctDist := DistanceMeters(pt, projected)
	if math.Abs(dist-correctDist) > 1e-9 {
		t.Errorf("Projection distance must be %f, but got %f", correctDist, dist)
	}
	if math.Abs(along-0.5) > 1e-6 {
		t.Errorf("Fraction along must be 0.5, but got %f", along)
	}
}

func TestProjectOntoLineClampsToEndpoints(t *testing.T) {
	line := orb.LineString{{37.640, 55.75}, {37.642, 55.75}}
	pt := orb.Point{37.6450, 55.75}

	projected, _, along := ProjectOntoLine(pt, line)
	if projected != line[1] {
		t.Errorf("Projection must clamp to the last point, got %v", projected)
	}
	if along != 1.0 {
		t.Errorf("Fraction along must clamp to 1.0, but got %f", along)
	}
}
