package osmlr2graph

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
	"github.com/pkg/errors"
)

// DefaultSearchRadiusMeters Candidate edges are collected within this distance of a coordinate
const DefaultSearchRadiusMeters = 50.0

// Candidate Edge found near a coordinate
type Candidate struct {
	EdgeID GraphID
	// Point is the projection of the searched coordinate onto the edge
	Point          orb.Point
	DistanceMeters float64
	PercentAlong   float64
}

// PathLocation Result of a nearest-edge search: a coordinate with its candidate edges
type PathLocation struct {
	Point orb.Point
	Edges []Candidate
}

type shapePoint struct {
	point  orb.Point
	edgeID GraphID
}

func (sp shapePoint) Point() orb.Point {
	return sp.point
}

// EdgeIndex Spatial index over edge shapes for nearest-edge lookups
type EdgeIndex struct {
	reader       *GraphReader
	tree         *quadtree.Quadtree
	radiusMeters float64
}

// NewEdgeIndex builds index over every edge shape point of the store
func NewEdgeIndex(reader *GraphReader, radiusMeters float64) (*EdgeIndex, error) {
	if radiusMeters <= 0 {
		radiusMeters = DefaultSearchRadiusMeters
	}
	index := &EdgeIndex{
		reader:       reader,
		tree:         quadtree.New(orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}),
		radiusMeters: radiusMeters,
	}

	tileIDs, err := reader.AllTileIDs()
	if err != nil {
		return nil, err
	}
	for _, tileID := range tileIDs {
		tile, err := reader.Tile(tileID)
		if err != nil {
			return nil, err
		}
		for i := range tile.Edges {
			edgeID := tileID.WithIndex(uint32(i))
			for _, pt := range tile.Edges[i].Geom {
				if err := index.tree.Add(shapePoint{point: pt, edgeID: edgeID}); err != nil {
					return nil, errors.Wrap(err, "Can't index shape point")
				}
			}
		}
	}
	return index, nil
}

// Search returns edge candidates near given coordinate, closest first
func (index *EdgeIndex) Search(pt orb.Point) ([]Candidate, error) {
	// quadtree coordinates are planar degrees, pad the bound and refine in meters
	latDegrees := index.radiusMeters / (earthRadius * 1000.0 * pi180) * 2.0
	// longitude degrees shrink towards the poles
	lonScale := math.Cos(degreesToRadians(pt.Lat()))
	if lonScale < 0.05 {
		lonScale = 0.05
	}
	lonDegrees := latDegrees / lonScale
	found := index.tree.InBound(nil, orb.Bound{
		Min: orb.Point{pt.Lon() - lonDegrees, pt.Lat() - latDegrees},
		Max: orb.Point{pt.Lon() + lonDegrees, pt.Lat() + latDegrees},
	})

	seen := make(map[GraphID]struct{})
	candidates := []Candidate{}
	for _, item := range found {
		edgeID := item.(shapePoint).edgeID
		if _, ok := seen[edgeID]; ok {
			continue
		}
		seen[edgeID] = struct{}{}

		shape, err := index.reader.EdgeShape(edgeID)
		if err != nil {
			return nil, err
		}
		projected, dist, along := ProjectOntoLine(pt, shape)
		if dist > index.radiusMeters {
			continue
		}
		candidates = append(candidates, Candidate{
			EdgeID:         edgeID,
			Point:          projected,
			DistanceMeters: dist,
			PercentAlong:   along,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceMeters < candidates[j].DistanceMeters
	})
	return candidates, nil
}
