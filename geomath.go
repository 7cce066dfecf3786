package osmlr2graph

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadius = 6370.986884258304
	pi180       = math.Pi / 180.0
	pi180Rev    = 180.0 / math.Pi

	// bearingLookaheadMeters OpenLR recommends evaluating heading over the first 20 meters of shape
	bearingLookaheadMeters = 20.0
)

// degreesToRadians deg = r * pi / 180
func degreesToRadians(d float64) float64 {
	return d * pi180
}

// radiansTodegrees r = deg  * 180 / pi
func radiansTodegrees(d float64) float64 {
	return d * pi180Rev
}

// DistanceMeters returns great circle distance between two geo-points (meters)
func DistanceMeters(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p.Lat())
	lon1 := degreesToRadians(p.Lon())
	lat2 := degreesToRadians(q.Lat())
	lon2 := degreesToRadians(q.Lon())
	diffLat := lat2 - lat1
	diffLon := lon2 - lon1
	a := math.Pow(math.Sin(diffLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(diffLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return c * earthRadius * 1000.0
}

// LengthMeters returns length for given line (meters)
func LengthMeters(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += DistanceMeters(line[i-1], line[i])
	}
	return totalLength
}

// Interpolate returns a point on segment [a;b] at given fraction of its length
func Interpolate(a, b orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*a.Lon() + fraction*b.Lon(),
		(1-fraction)*a.Lat() + fraction*b.Lat(),
	}
}

// Chop removes the leading portion of given line covering exactly dist meters and returns it
/*
	The line is mutated in place: consumed points are dropped and an
	interpolated split point becomes its new head. When dist is not less
	than the total length the whole line is consumed and returned,
	leaving the line empty. With dist = 0 the result holds only the
	first point.
*/
func Chop(line *orb.LineString, dist float64) orb.LineString {
	seg := *line
	length := len(seg)
	if length == 0 {
		return orb.LineString{}
	}

	result := orb.LineString{seg[0]}
	d := 0.0
	i := 1
	for ; i < length; i++ {
		segdist := DistanceMeters(seg[i-1], seg[i])
		if d+segdist >= dist {
			frac := 0.0
			if segdist > 0 {
				frac = (dist - d) / segdist
			}
			midpoint := Interpolate(seg[i-1], seg[i], frac)
			result = append(result, midpoint)
			seg = seg[i-1:]
			seg[0] = midpoint
			*line = seg
			return result
		}
		d += segdist
		result = append(result, seg[i])
	}

	// dist exceeds the line, the whole thing is consumed
	*line = seg[:0]
	return result
}

// BearingDegrees returns heading for segment [p;q] in degrees [0;360)
func BearingDegrees(p, q orb.Point) float64 {
	lat1 := degreesToRadians(p.Lat())
	lat2 := degreesToRadians(q.Lat())
	diffLon := degreesToRadians(q.Lon() - p.Lon())
	y := math.Sin(diffLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(diffLon)
	bearing := radiansTodegrees(math.Atan2(y, x))
	bearing = math.Mod(bearing+360.0, 360.0)
	return bearing
}

// Bearing returns heading along the initial part of given line in degrees [0;360)
/*
	The heading is estimated over the first 20 meters of shape rather
	than the chord to the last point. Shorter lines use everything they
	have.
*/
func Bearing(line orb.LineString) float64 {
	if len(line) < 2 {
		return 0.0
	}
	remainder := make(orb.LineString, len(line))
	copy(remainder, line)
	head := Chop(&remainder, bearingLookaheadMeters)
	return BearingDegrees(head[0], head[len(head)-1])
}

// ProjectOntoLine returns the closest point of line to pt, distance to it (meters) and fraction of line length before it
func ProjectOntoLine(pt orb.Point, line orb.LineString) (orb.Point, float64, float64) {
	if len(line) == 0 {
		return orb.Point{}, math.MaxFloat64, 0.0
	}
	if len(line) == 1 {
		return line[0], DistanceMeters(pt, line[0]), 0.0
	}

	bestPoint := line[0]
	bestDist := math.MaxFloat64
	bestAlong := 0.0

	total := LengthMeters(line)
	walked := 0.0
	for i := 1; i < len(line); i++ {
		a := line[i-1]
		b := line[i]
		segdist := DistanceMeters(a, b)

		dx := b.Lon() - a.Lon()
		dy := b.Lat() - a.Lat()
		t := 0.0
		if norm := dx*dx + dy*dy; norm > 0 {
			t = ((pt.Lon()-a.Lon())*dx + (pt.Lat()-a.Lat())*dy) / norm
			if t < 0 {
				t = 0
			} else if t > 1 {
				t = 1
			}
		}
		candidate := Interpolate(a, b, t)
		dist := DistanceMeters(pt, candidate)
		if dist < bestDist {
			bestDist = dist
			bestPoint = candidate
			if total > 0 {
				bestAlong = (walked + t*segdist) / total
			}
		}
		walked += segdist
	}
	return bestPoint, bestDist, bestAlong
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}
