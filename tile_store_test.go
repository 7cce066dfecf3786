package osmlr2graph

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGraphReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)

	tile, err := reader.Tile(tileBase.WithIndex(3))
	if err != nil {
		t.Error(err)
		return
	}
	if len(tile.Nodes) != 3 || len(tile.Edges) != 4 {
		t.Errorf("Tile must hold 3 nodes and 4 edges, but got %d and %d", len(tile.Nodes), len(tile.Edges))
	}

	edge, err := reader.Edge(tileBase.WithIndex(0))
	if err != nil {
		t.Error(err)
		return
	}
	if edge.EndNode != tileBase.WithIndex(1) {
		t.Errorf("First edge must end at node 1, but got %s", edge.EndNode)
	}
	if edge.Class != ROAD_CLASS_TERTIARY || edge.Use != EDGE_USE_ROAD {
		t.Errorf("Edge attributes must survive the round trip")
	}
}

func TestEdgeShapeFollowsTraversalDirection(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)

	forward, err := reader.EdgeShape(tileBase.WithIndex(0))
	if err != nil {
		t.Error(err)
		return
	}
	if forward[0] != fixtureNodeA || forward[len(forward)-1] != fixtureNodeB {
		t.Errorf("Forward shape must run from A to B, but got %v", forward)
	}

	backward, err := reader.EdgeShape(tileBase.WithIndex(1))
	if err != nil {
		t.Error(err)
		return
	}
	if backward[0] != fixtureNodeB || backward[len(backward)-1] != fixtureNodeA {
		t.Errorf("Backward shape must run from B to A, but got %v", backward)
	}
}

func TestOppEdgeID(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)

	correctOpposites := map[uint32]uint32{0: 1, 1: 0, 2: 3, 3: 2}
	for edgeIndex, correctOpposite := range correctOpposites {
		oppID, err := reader.OppEdgeID(tileBase.WithIndex(edgeIndex))
		if err != nil {
			t.Error(err)
			return
		}
		if oppID != tileBase.WithIndex(correctOpposite) {
			t.Errorf("Opposite of edge %d must be edge %d, but got %s", edgeIndex, correctOpposite, oppID)
		}
	}
}

func TestEdgeStartCoord(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)

	start, err := reader.EdgeStartCoord(tileBase.WithIndex(2))
	if err != nil {
		t.Error(err)
		return
	}
	if start != fixtureNodeB {
		t.Errorf("Edge 2 must start at B, but got %v", start)
	}
}

func TestAllTileIDs(t *testing.T) {
	dir := t.TempDir()
	tileBase := buildFixtureTile(t, dir)
	reader := NewGraphReader(dir)

	ids, err := reader.AllTileIDs()
	if err != nil {
		t.Error(err)
		return
	}
	if len(ids) != 1 || ids[0] != tileBase {
		t.Errorf("Store must hold the single tile %s, but got %v", tileBase, ids)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	fileName := filepath.Join(dir, "config.json")
	err := os.WriteFile(fileName, []byte(`{"graph": {"tile_dir": "/data/tiles"}}`), 0o644)
	if err != nil {
		t.Error(err)
		return
	}

	cfg, err := LoadConfig(fileName)
	if err != nil {
		t.Error(err)
		return
	}
	if cfg.Graph.TileDir != "/data/tiles" {
		t.Errorf("Tile directory must be /data/tiles, but got %s", cfg.Graph.TileDir)
	}
	if cfg.Graph.SearchRadiusMeters != DefaultSearchRadiusMeters {
		t.Errorf("Omitted search radius must default to %f, but got %f", DefaultSearchRadiusMeters, cfg.Graph.SearchRadiusMeters)
	}

	err = os.WriteFile(fileName, []byte(`{"graph": {}}`), 0o644)
	if err != nil {
		t.Error(err)
		return
	}
	_, err = LoadConfig(fileName)
	if err == nil {
		t.Errorf("Configuration without tile_dir must be rejected")
	}
}
