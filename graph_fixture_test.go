package osmlr2graph

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

// Three nodes on one parallel, forming the chain A - B - C
var (
	fixtureNodeA = orb.Point{37.640, 55.75}
	fixtureNodeB = orb.Point{37.641, 55.75}
	fixtureNodeC = orb.Point{37.643, 55.75}
)

const fixtureLevel = uint32(2)

// buildFixtureTile writes a tiny chain graph into dir and returns its tile base identifier
/*
	Edge layout (grouped by start node):
		0: A -> B
		1: B -> A
		2: B -> C
		3: C -> B
*/
func buildFixtureTile(t *testing.T, dir string) GraphID {
	return buildFixtureTileAccess(t, dir, VehicularAccess)
}

// buildFixtureTileAccess is buildFixtureTile with a custom access mask on the B - C edge pair
func buildFixtureTileAccess(t *testing.T, dir string, bcAccess uint32) GraphID {
	t.Helper()

	tileBase := NewGraphID(fixtureLevel, TileIDFromCoord(fixtureLevel, fixtureNodeA), 0)
	lineAB := orb.LineString{fixtureNodeA, fixtureNodeB}
	lineBC := orb.LineString{fixtureNodeB, fixtureNodeC}

	edge := func(endNode uint32, oppIndex uint32, forward bool, geom orb.LineString, access uint32) DirectedEdge {
		return DirectedEdge{
			EndNode:       tileBase.WithIndex(endNode),
			OppIndex:      oppIndex,
			LengthMeters:  LengthMeters(geom),
			Class:         ROAD_CLASS_TERTIARY,
			Use:           EDGE_USE_ROAD,
			Forward:       forward,
			ForwardAccess: access,
			ReverseAccess: access,
			Geom:          geom,
		}
	}
	tile := &GraphTile{
		ID: tileBase,
		Nodes: []Node{
			{Point: fixtureNodeA, FirstEdge: 0, EdgeCount: 1},
			{Point: fixtureNodeB, FirstEdge: 1, EdgeCount: 2},
			{Point: fixtureNodeC, FirstEdge: 3, EdgeCount: 1},
		},
		Edges: []DirectedEdge{
			edge(1, 0, true, lineAB, VehicularAccess),
			edge(0, 0, false, lineAB, VehicularAccess),
			edge(2, 0, true, lineBC, bcAccess),
			edge(1, 1, false, lineBC, bcAccess),
		},
	}
	err := WriteGraphTile(dir, tile)
	if err != nil {
		t.Fatalf("Can't write fixture tile: %v", err)
	}
	return tileBase
}

// fixtureLRP returns reference point matching the fixture's tertiary two-way roads
func fixtureLRP(pt orb.Point, lengthMeters float64) LocationReference {
	return LocationReference{
		Lon:          int32(math.Round(pt.Lon() * coordScale)),
		Lat:          int32(math.Round(pt.Lat() * coordScale)),
		Bearing:      90,
		FRC:          4,
		FOW:          FOW_SINGLE_CARRIAGEWAY,
		LengthMeters: uint32(math.Round(lengthMeters)),
	}
}

// writeFixtureOSMLRFile stores tile under the hierarchical layout naming the fixture graph tile
func writeFixtureOSMLRFile(t *testing.T, dir string, tile *OSMLRTile) string {
	t.Helper()

	fileName := filepath.Join(dir, "osmlr", "2", "000", "840", "390.osmlr")
	err := os.MkdirAll(filepath.Dir(fileName), 0o755)
	if err != nil {
		t.Fatalf("Can't create OSMLR directory: %v", err)
	}
	f, err := os.Create(fileName)
	if err != nil {
		t.Fatalf("Can't create OSMLR file: %v", err)
	}
	defer f.Close()
	err = EncodeOSMLRTile(f, tile)
	if err != nil {
		t.Fatalf("Can't encode OSMLR tile: %v", err)
	}
	return fileName
}
