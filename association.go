package osmlr2graph

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Matched edge sequence endpoints must land within this squared distance (square meters) of the declared segment endpoints
const approxEqualDistanceSquared = 100.0

func approxEqual(a, b orb.Point) bool {
	dist := DistanceMeters(a, b)
	return dist*dist <= approxEqualDistanceSquared
}

// PartialChunk Matched edge sequence whose endpoints do not line up with its segment
/*
	Saved for a later reconciliation pass which would gather partial
	matches across tile boundaries and build chunks out of them. That
	pass does not exist yet; chunks are collected and exposed but never
	turned into association records.
*/
type PartialChunk struct {
	Edges    []GraphID
	Segments []GraphID
}

// matchSegment matches one segment and records or defers the outcome
func (a *Associator) matchSegment(segmentID GraphID, segment *Segment) error {
	edges, _, err := a.matchEdges(segment)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		fmt.Printf("Warning. Unable to match segment %s.\n", segmentID)
		a.stats.Discarded++
		return nil
	}

	segStart := segment.LRPs[0].Coord()
	segEnd := segment.LRPs[len(segment.LRPs)-1].Coord()

	edgesStart, err := a.reader.EdgeStartCoord(edges[0])
	if err != nil {
		return err
	}
	edgesEnd, err := a.reader.EdgeEndCoord(edges[len(edges)-1])
	if err != nil {
		return err
	}

	if approxEqual(segStart, edgesStart) && approxEqual(segEnd, edgesEnd) {
		if len(edges) == 1 {
			// the segment matches one edge exactly, it can be used
			// directly without any indirection via chunks
			a.assignOneToOne(edges[0], segmentID)
			a.stats.OneToOne++
		} else {
			if err := a.assignOneToMany(edges, segmentID); err != nil {
				return err
			}
			a.stats.OneToMany++
		}
		return nil
	}

	// save this for later, when all partial segments are gathered up
	// to build chunks out of them
	a.saveChunkForLater(edges, segmentID)
	a.stats.Deferred++
	return nil
}

// builderForEdge returns builder of the tile owning given edge, creating it on first use
func (a *Associator) builderForEdge(edgeID GraphID) *TileBuilder {
	tileID := edgeID.TileBase()
	builder, ok := a.tiles[tileID]
	if !ok {
		builder = NewTileBuilder(a.reader.TileDir(), tileID)
		a.tiles[tileID] = builder
	}
	return builder
}

// assignOneToOne records a segment matching a single edge over its whole span
func (a *Associator) assignOneToOne(edgeID, segmentID GraphID) {
	a.builderForEdge(edgeID).AddAssociation(edgeID, Association{
		SegmentID: segmentID,
		BeginPct:  0.0,
		EndPct:    1.0,
		Weight:    1.0,
	})
}

// assignOneToMany records a segment matching several edges exactly
/*
	Each edge covers a fraction of the segment proportional to its
	physical length. The last boundary is forced to exactly 1.0 so
	rounding never leaves the segment partially covered.
*/
func (a *Associator) assignOneToMany(edges []GraphID, segmentID GraphID) error {
	totalLength := 0.0
	lengths := make([]float64, 0, len(edges))
	for _, edgeID := range edges {
		edge, err := a.reader.Edge(edgeID)
		if err != nil {
			return err
		}
		totalLength += edge.LengthMeters
		lengths = append(lengths, totalLength)
	}

	beginPct := 0.0
	for i, edgeID := range edges {
		endPct := 1.0
		if i != len(edges)-1 {
			endPct = lengths[i] / totalLength
		}
		a.builderForEdge(edgeID).AddAssociation(edgeID, Association{
			SegmentID: segmentID,
			BeginPct:  beginPct,
			EndPct:    endPct,
			Weight:    1.0,
		})
		beginPct = endPct
	}
	return nil
}

// saveChunkForLater defers an out-of-tolerance match for reconciliation
func (a *Associator) saveChunkForLater(edges []GraphID, segmentID GraphID) {
	a.chunks = append(a.chunks, PartialChunk{
		Edges:    edges,
		Segments: []GraphID{segmentID},
	})
}
