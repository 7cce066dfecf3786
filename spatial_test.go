package osmlr2graph

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestSearchFindsNearestEdges(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)
	index, err := NewEdgeIndex(reader, DefaultSearchRadiusMeters)
	if err != nil {
		t.Error(err)
		return
	}

	// a spot halfway between A and B, a touch to the north
	spot := Interpolate(fixtureNodeA, fixtureNodeB, 0.5)
	spot[1] += 0.0001

	candidates, err := index.Search(spot)
	if err != nil {
		t.Error(err)
		return
	}
	found := map[GraphID]Candidate{}
	for _, candidate := range candidates {
		found[candidate.EdgeID] = candidate
	}
	for _, edgeIndex := range []uint32{0, 1} {
		if _, ok := found[tileBase.WithIndex(edgeIndex)]; !ok {
			t.Errorf("Search must find edge %d of the pair along the spot", edgeIndex)
		}
	}

	forward := found[tileBase.WithIndex(0)]
	if math.Abs(forward.PercentAlong-0.5) > 0.01 {
		t.Errorf("Projection along the forward edge must be at 0.5, but got %f", forward.PercentAlong)
	}
	backward := found[tileBase.WithIndex(1)]
	if math.Abs(backward.PercentAlong-0.5) > 0.01 {
		t.Errorf("Projection along the backward edge must be at 0.5, but got %f", backward.PercentAlong)
	}

	offset := DistanceMeters(spot, forward.Point)
	if math.Abs(forward.DistanceMeters-offset) > 0.1 {
		t.Errorf("Candidate distance must be %f, but got %f", offset, forward.DistanceMeters)
	}
	for i := 1; i < len(candidates); i++ {
		if candidates[i-1].DistanceMeters > candidates[i].DistanceMeters {
			t.Errorf("Candidates must be ordered closest first")
			break
		}
	}
}

func TestSearchAtHighLatitude(t *testing.T) {
	dir := t.TempDir()
	start := orb.Point{19.000, 70.0}
	end := orb.Point{19.001, 70.0}
	line := orb.LineString{start, end}

	tileBase := NewGraphID(fixtureLevel, TileIDFromCoord(fixtureLevel, start), 0)
	edge := func(endNode uint32, forward bool) DirectedEdge {
		return DirectedEdge{
			EndNode:       tileBase.WithIndex(endNode),
			LengthMeters:  LengthMeters(line),
			Class:         ROAD_CLASS_TERTIARY,
			Use:           EDGE_USE_ROAD,
			Forward:       forward,
			ForwardAccess: VehicularAccess,
			ReverseAccess: VehicularAccess,
			Geom:          line,
		}
	}
	tile := &GraphTile{
		ID: tileBase,
		Nodes: []Node{
			{Point: start, FirstEdge: 0, EdgeCount: 1},
			{Point: end, FirstEdge: 1, EdgeCount: 1},
		},
		Edges: []DirectedEdge{edge(1, true), edge(0, false)},
	}
	if err := WriteGraphTile(dir, tile); err != nil {
		t.Fatalf("Can't write tile: %v", err)
	}

	reader := NewGraphReader(dir)
	index, err := NewEdgeIndex(reader, DefaultSearchRadiusMeters)
	if err != nil {
		t.Error(err)
		return
	}

	// ~45 meters west of the start node; one longitude degree here is
	// barely 38 km, far less than at the equator
	spot := orb.Point{start.Lon() - 0.00118, start.Lat()}
	offset := DistanceMeters(spot, start)
	if offset > DefaultSearchRadiusMeters {
		t.Fatalf("Fixture spot must be inside the radius, got %f", offset)
	}
	candidates, err := index.Search(spot)
	if err != nil {
		t.Error(err)
		return
	}
	if len(candidates) == 0 {
		t.Errorf("Spot %f meters from the edge (radius %f) must have candidates, got none", offset, DefaultSearchRadiusMeters)
	}
}

func TestSearchDenseShapeDoesNotMaskEdges(t *testing.T) {
	dir := t.TempDir()

	// a 40 point shape next to a plain 2 point one
	dense := orb.LineString{}
	for i := 0; i < 40; i++ {
		dense = append(dense, orb.Point{37.700 + float64(i)*0.00001, 55.75})
	}
	sparse := orb.LineString{{37.700, 55.7501}, {37.7004, 55.7501}}

	tileBase := NewGraphID(fixtureLevel, TileIDFromCoord(fixtureLevel, dense[0]), 0)
	edge := func(endNode uint32, forward bool, geom orb.LineString) DirectedEdge {
		return DirectedEdge{
			EndNode:       tileBase.WithIndex(endNode),
			LengthMeters:  LengthMeters(geom),
			Class:         ROAD_CLASS_TERTIARY,
			Use:           EDGE_USE_ROAD,
			Forward:       forward,
			ForwardAccess: VehicularAccess,
			ReverseAccess: VehicularAccess,
			Geom:          geom,
		}
	}
	tile := &GraphTile{
		ID: tileBase,
		Nodes: []Node{
			{Point: dense[0], FirstEdge: 0, EdgeCount: 1},
			{Point: dense[len(dense)-1], FirstEdge: 1, EdgeCount: 1},
			{Point: sparse[0], FirstEdge: 2, EdgeCount: 1},
			{Point: sparse[1], FirstEdge: 3, EdgeCount: 1},
		},
		Edges: []DirectedEdge{
			edge(1, true, dense),
			edge(0, false, dense),
			edge(3, true, sparse),
			edge(2, false, sparse),
		},
	}
	if err := WriteGraphTile(dir, tile); err != nil {
		t.Fatalf("Can't write tile: %v", err)
	}

	reader := NewGraphReader(dir)
	index, err := NewEdgeIndex(reader, DefaultSearchRadiusMeters)
	if err != nil {
		t.Error(err)
		return
	}

	// between the two, a few meters from each
	spot := orb.Point{37.7002, 55.75005}
	candidates, err := index.Search(spot)
	if err != nil {
		t.Error(err)
		return
	}
	found := map[GraphID]struct{}{}
	for _, candidate := range candidates {
		found[candidate.EdgeID] = struct{}{}
	}
	for _, edgeIndex := range []uint32{0, 2} {
		if _, ok := found[tileBase.WithIndex(edgeIndex)]; !ok {
			t.Errorf("Edge %d is within the radius and must be a candidate", edgeIndex)
		}
	}
}

func TestSearchRespectsRadius(t *testing.T) {
	dir := t.TempDir()
	buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)
	index, err := NewEdgeIndex(reader, DefaultSearchRadiusMeters)
	if err != nil {
		t.Error(err)
		return
	}

	// roughly 200 meters north of A
	farSpot := orb.Point{fixtureNodeA.Lon(), fixtureNodeA.Lat() + 0.0018}
	candidates, err := index.Search(farSpot)
	if err != nil {
		t.Error(err)
		return
	}
	if len(candidates) != 0 {
		t.Errorf("Spot outside the search radius must have no candidates, but got %d", len(candidates))
	}
}
