package osmlr2graph

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Route terminal node must land this close (meters) to the next reference point
const pathEndpointToleranceMeters = 10.0

func pointString(pt orb.Point) string {
	return fmt.Sprintf("Point(%.7f, %.7f)", pt.Lon(), pt.Lat())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// matchEdges resolves the edge sequence best corresponding to the segment's reference points
/*
	Walks consecutive reference point pairs, routing between their
	nearest-edge candidates. Any failure along the way discards the
	whole segment: no retry, no fallback candidate, no partial result.
	The returned score is a diagnostic match-quality measure; it does
	not select among alternatives, only the first candidate of each
	search is ever routed.

	A nil edge slice with a nil error means the segment was discarded.
	Errors are infrastructure failures (unreadable graph tiles) and
	abort the run.
*/
func (a *Associator) matchEdges(segment *Segment) ([]GraphID, int, error) {
	edges := []GraphID{}
	score := 0

	originCoord := segment.LRPs[0].Coord()
	originCands, err := a.index.Search(originCoord)
	if err != nil {
		return nil, 0, err
	}
	if len(originCands) == 0 {
		fmt.Printf("Warning. Unable to find edge near origin %s. Segment cannot be matched, discarding.\n", pointString(originCoord))
		return nil, 0, nil
	}
	origin := &PathLocation{Point: originCoord, Edges: originCands}

	for i := 0; i < len(segment.LRPs)-1; i++ {
		lrp := &segment.LRPs[i]
		coord := lrp.Coord()
		nextCoord := segment.LRPs[i+1].Coord()
		roadClass := RoadClass(lrp.FRC)

		destCands, err := a.index.Search(nextCoord)
		if err != nil {
			return nil, 0, err
		}
		if len(destCands) == 0 {
			fmt.Printf("Warning. Unable to find edge near point %s. Segment cannot be matched, discarding.\n", pointString(nextCoord))
			return nil, 0, nil
		}
		dest := &PathLocation{Point: nextCoord, Edges: destCands}

		// make sure there's no state left over from previous paths
		a.pathAlgo.Clear()
		path, err := a.pathAlgo.GetBestPath(origin, dest, a.reader, a.costing)
		if err != nil {
			return nil, 0, err
		}
		if len(path) == 0 {
			fmt.Printf("Warning. No route to destination %s from origin point %s. Segment cannot be matched, discarding.\n", pointString(nextCoord), pointString(coord))
			return nil, 0, nil
		}

		endCoord, err := a.reader.EdgeEndCoord(path[len(path)-1].EdgeID)
		if err != nil {
			return nil, 0, err
		}
		if DistanceMeters(endCoord, nextCoord) > pathEndpointToleranceMeters {
			fmt.Printf("Warning. Route to destination %s from origin point %s ends more than 10m away: %s. Segment cannot be matched, discarding.\n",
				pointString(nextCoord), pointString(coord), pointString(endCoord))
			return nil, 0, nil
		}

		sum := 0.0
		for _, info := range path {
			sum += info.ElapsedCost
		}
		score += absInt(int(sum)-int(lrp.LengthMeters)) / 10

		firstEdgeID := path[0].EdgeID
		firstEdge, err := a.reader.Edge(firstEdgeID)
		if err != nil {
			return nil, 0, err
		}
		if !CheckAccess(firstEdge) {
			fmt.Printf("Warning. Edge %s not accessible. Segment cannot be matched, discarding.\n", firstEdgeID)
			return nil, 0, nil
		}

		score += absInt(int(roadClass) - int(firstEdge.Class))

		found := false
		for _, candidate := range origin.Edges {
			if candidate.EdgeID != firstEdgeID {
				continue
			}
			found = true
			score += int(DistanceMeters(candidate.Point, coord))

			bear1, err := a.reader.EdgeBearing(firstEdgeID, candidate.PercentAlong)
			if err != nil {
				return nil, 0, err
			}
			bearDiff := absInt(int(bear1) - int(lrp.Bearing))
			if bearDiff > 180 {
				bearDiff = 360 - bearDiff
			}
			score += bearDiff / 10
			break
		}
		if !found {
			fmt.Printf("Warning. Unable to find edge %s at origin point %s. Segment cannot be matched, discarding.\n", firstEdgeID, pointString(origin.Point))
			return nil, 0, nil
		}

		// form of way isn't really a metric space
		if FormOfWayForEdge(firstEdge) != lrp.FOW {
			score += 5
		}

		for _, info := range path {
			edges = append(edges, info.EdgeID)
		}

		// use dest as next origin
		origin = dest
	}

	return dedupeConsecutive(edges), score, nil
}

// dedupeConsecutive removes consecutive duplicate edge identifiers, preserving order
func dedupeConsecutive(edges []GraphID) []GraphID {
	result := edges[:0]
	for _, id := range edges {
		if len(result) == 0 || result[len(result)-1] != id {
			result = append(result, id)
		}
	}
	return result
}
