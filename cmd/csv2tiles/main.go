package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LdDl/ch"
	"github.com/nextzen/osmlr2graph"
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

var (
	edgesFile    = flag.String("edges", "my_graph.csv", "Filename of 'Comma-Separated Values' (CSV) formatted file with graph edges")
	out          = flag.String("out", "tiles", "Output directory of the graph tile store")
	level        = flag.Uint("level", 2, "Hierarchy level of produced tiles. Expected values: 0 / 1 / 2")
	geomFormat   = flag.String("geomf", "wkt", "Format of input geometry. Expected values: wkt / geojson")
	units        = flag.String("units", "km", "Units of input weights. Expected values: km for kilometers / m for meters")
	defaultClass = flag.Uint("class", 5, "Road class assigned to every edge (0 motorway ... 7 service)")
	doContract   = flag.Bool("contract", false, "Run contraction and store shortcut edges?")
)

// dirEdge One directed edge being laid out into a tile
type dirEdge struct {
	from, to  int64
	lengthM   float64
	geom      orb.LineString
	forward   bool
	shortcut  bool
	oneway    bool
	navigable bool // false for synthesized opposites of one-way edges
	wayID     int64

	slot    uint32 // position among the source vertex's outgoing edges
	tileIdx uint32 // position within the owning tile's edge list
}

func main() {
	flag.Parse()

	if *level > 2 {
		fmt.Println("Hierarchy level must be 0, 1 or 2.")
		return
	}

	st := time.Now()
	edges, err := readEdgesCSV(*edgesFile, strings.ToLower(*geomFormat), strings.ToLower(*units))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("Read %d edges in %v\n", len(edges), time.Since(st))

	if *doContract {
		fmt.Printf("Starting contraction process....\n")
		st = time.Now()
		shortcuts, err := contractShortcuts(edges)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		edges = append(edges, shortcuts...)
		fmt.Printf("Done contraction process in %v. Got %d shortcuts\n", time.Since(st), len(shortcuts))
	}

	tiles, err := layoutTiles(edges, uint32(*level), osmlr2graph.RoadClass(*defaultClass))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	for _, tile := range tiles {
		if err := osmlr2graph.WriteGraphTile(*out, tile); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	fmt.Printf("Wrote %d tiles to %s\n", len(tiles), *out)
}

// readEdgesCSV reads the converter CSV format and makes sure every edge has an opposite
/*
	Expected columns: from_vertex_id;to_vertex_id;weight;geom;was_one_way;
	edge_id;osm_way_from;... (extra columns ignored). One-way roads get a
	synthesized non-navigable opposite so opposing-edge lookups always
	resolve.
*/
func readEdgesCSV(fileName, geomf, unit string) ([]*dirEdge, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read CSV")
	}
	if len(rows) < 2 {
		return nil, errors.New("Edges file has no data rows")
	}

	edges := []*dirEdge{}
	for i, row := range rows[1:] {
		if len(row) < 6 {
			return nil, errors.Errorf("Row %d has %d columns, want at least 6", i, len(row))
		}
		from, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad source vertex in row %d", i)
		}
		to, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad target vertex in row %d", i)
		}
		weight, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad weight in row %d", i)
		}
		if unit == "km" {
			weight *= 1000.0
		}
		geom, err := parseGeometry(row[3], geomf)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad geometry in row %d", i)
		}
		oneway, err := strconv.ParseBool(row[4])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad one-way flag in row %d", i)
		}
		wayID := int64(0)
		if len(row) > 6 {
			wayID, _ = strconv.ParseInt(row[6], 10, 64)
		}
		edges = append(edges, &dirEdge{
			from: from, to: to,
			lengthM:   weight,
			geom:      geom,
			forward:   true,
			oneway:    oneway,
			navigable: true,
			wayID:     wayID,
		})
	}

	return withOpposites(edges), nil
}

// withOpposites pairs every edge with its reverse, synthesizing missing ones
func withOpposites(edges []*dirEdge) []*dirEdge {
	unclaimed := make(map[[2]int64][]*dirEdge)
	for _, edge := range edges {
		unclaimed[[2]int64{edge.from, edge.to}] = append(unclaimed[[2]int64{edge.from, edge.to}], edge)
	}

	result := append([]*dirEdge{}, edges...)
	for _, edge := range edges {
		key := [2]int64{edge.to, edge.from}
		if backlog := unclaimed[key]; len(backlog) > 0 {
			unclaimed[key] = backlog[1:]
			continue
		}
		result = append(result, &dirEdge{
			from: edge.to, to: edge.from,
			lengthM:   edge.lengthM,
			geom:      edge.geom,
			forward:   false,
			shortcut:  edge.shortcut,
			oneway:    edge.oneway,
			navigable: false,
			wayID:     edge.wayID,
		})
	}
	return result
}

func parseGeometry(geomStr, geomf string) (orb.LineString, error) {
	if geomf == "geojson" {
		geometry, err := geojson.UnmarshalGeometry([]byte(geomStr))
		if err != nil {
			return nil, err
		}
		if !geometry.IsLineString() {
			return nil, errors.New("Geometry is not a linestring")
		}
		line := make(orb.LineString, len(geometry.LineString))
		for i, pt := range geometry.LineString {
			line[i] = orb.Point{pt[0], pt[1]}
		}
		return line, nil
	}
	return wkt.UnmarshalLineString(geomStr)
}

// contractShortcuts prepares contraction hierarchies and returns shortcut edges
/*
	The matcher must be able to recognize and reject shortcut edges, so
	they are stored alongside regular ones with the shortcut flag set.
	Geometry is the straight line between endpoints.
*/
func contractShortcuts(edges []*dirEdge) ([]*dirEdge, error) {
	vertexCoord := vertexCoords(edges)

	graph := ch.Graph{}
	for _, edge := range edges {
		if !edge.navigable {
			continue
		}
		if err := graph.CreateVertex(edge.from); err != nil {
			return nil, errors.Wrap(err, "Can not create source vertex")
		}
		if err := graph.CreateVertex(edge.to); err != nil {
			return nil, errors.Wrap(err, "Can not create target vertex")
		}
		if err := graph.AddEdge(edge.from, edge.to, edge.lengthM); err != nil {
			return nil, errors.Wrap(err, "Can not wrap Source and Target vertices as Edge")
		}
	}
	graph.PrepareContractionHierarchies()

	tmp, err := os.CreateTemp("", "shortcuts*.csv")
	if err != nil {
		return nil, errors.Wrap(err, "Can't create shortcuts file")
	}
	tmp.Close()
	defer os.Remove(tmp.Name())
	if err := graph.ExportShortcutsToFile(tmp.Name()); err != nil {
		return nil, errors.Wrap(err, "Can't export shortcuts")
	}

	f, err := os.Open(tmp.Name())
	if err != nil {
		return nil, errors.Wrap(err, "Can't read shortcuts back")
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse shortcuts")
	}

	shortcuts := []*dirEdge{}
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			// header
			continue
		}
		from, err1 := strconv.ParseInt(row[0], 10, 64)
		to, err2 := strconv.ParseInt(row[1], 10, 64)
		weight, err3 := strconv.ParseFloat(row[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, errors.Errorf("Bad shortcut row %d", i)
		}
		shortcuts = append(shortcuts, &dirEdge{
			from: from, to: to,
			lengthM:   weight,
			geom:      orb.LineString{vertexCoord[from], vertexCoord[to]},
			forward:   true,
			shortcut:  true,
			oneway:    true,
			navigable: true,
		})
	}
	return withOpposites(shortcuts), nil
}

func vertexCoords(edges []*dirEdge) map[int64]orb.Point {
	coords := make(map[int64]orb.Point)
	for _, edge := range edges {
		start, end := edge.geom[0], edge.geom[len(edge.geom)-1]
		if !edge.forward {
			start, end = end, start
		}
		if _, ok := coords[edge.from]; !ok {
			coords[edge.from] = start
		}
		if _, ok := coords[edge.to]; !ok {
			coords[edge.to] = end
		}
	}
	return coords
}

// layoutTiles assigns vertices and edges to tiles and resolves cross references
func layoutTiles(edges []*dirEdge, level uint32, class osmlr2graph.RoadClass) (map[osmlr2graph.GraphID]*osmlr2graph.GraphTile, error) {
	coords := vertexCoords(edges)

	// vertex -> (tile, node index)
	type nodeRef struct {
		tile  osmlr2graph.GraphID
		index uint32
	}
	refs := make(map[int64]nodeRef)
	tileVertices := make(map[osmlr2graph.GraphID][]int64)
	bySource := make(map[int64][]*dirEdge)
	for _, edge := range edges {
		bySource[edge.from] = append(bySource[edge.from], edge)
	}
	for _, edge := range edges {
		for _, vertex := range []int64{edge.from, edge.to} {
			if _, ok := refs[vertex]; ok {
				continue
			}
			tileBase := osmlr2graph.NewGraphID(level, osmlr2graph.TileIDFromCoord(level, coords[vertex]), 0)
			refs[vertex] = nodeRef{tile: tileBase, index: uint32(len(tileVertices[tileBase]))}
			tileVertices[tileBase] = append(tileVertices[tileBase], vertex)
		}
	}

	// lay edges out contiguously per source node
	tiles := make(map[osmlr2graph.GraphID]*osmlr2graph.GraphTile)
	tileEdges := make(map[osmlr2graph.GraphID][]*dirEdge)
	for tileBase, vertices := range tileVertices {
		tile := &osmlr2graph.GraphTile{ID: tileBase}
		for _, vertex := range vertices {
			outgoing := bySource[vertex]
			node := osmlr2graph.Node{
				Point:     coords[vertex],
				FirstEdge: uint32(len(tileEdges[tileBase])),
				EdgeCount: uint32(len(outgoing)),
			}
			for slot, edge := range outgoing {
				edge.slot = uint32(slot)
				edge.tileIdx = uint32(len(tileEdges[tileBase]))
				tileEdges[tileBase] = append(tileEdges[tileBase], edge)
			}
			tile.Nodes = append(tile.Nodes, node)
		}
		tiles[tileBase] = tile
	}

	// opposite lookup: i-th (u,v) edge pairs with i-th (v,u) edge
	byPair := make(map[[2]int64][]*dirEdge)
	for _, edge := range edges {
		byPair[[2]int64{edge.from, edge.to}] = append(byPair[[2]int64{edge.from, edge.to}], edge)
	}

	for tileBase, laid := range tileEdges {
		tile := tiles[tileBase]
		for _, edge := range laid {
			opposites := byPair[[2]int64{edge.to, edge.from}]
			mates := byPair[[2]int64{edge.from, edge.to}]
			position := 0
			for i, mate := range mates {
				if mate == edge {
					position = i
					break
				}
			}
			if position >= len(opposites) {
				return nil, errors.Errorf("No opposite edge for %d->%d", edge.from, edge.to)
			}
			opp := opposites[position]

			access := uint32(0)
			reverse := uint32(0)
			if edge.navigable {
				access = osmlr2graph.VehicularAccess
			}
			if opp.navigable {
				reverse = osmlr2graph.VehicularAccess
			}
			tile.Edges = append(tile.Edges, osmlr2graph.DirectedEdge{
				EndNode:       refs[edge.to].tile.WithIndex(refs[edge.to].index),
				OppIndex:      opp.slot,
				LengthMeters:  edge.lengthM,
				Class:         class,
				Use:           osmlr2graph.EDGE_USE_ROAD,
				Shortcut:      edge.shortcut,
				Forward:       edge.forward,
				ForwardAccess: access,
				ReverseAccess: reverse,
				WayID:         osm.WayID(edge.wayID),
				Geom:          edge.geom,
			})
		}
	}
	return tiles, nil
}
