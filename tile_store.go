package osmlr2graph

import (
	"encoding/csv"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
)

var (
	edgesCSVHeader = []string{"edge", "end_node", "opp_index", "length", "class", "use", "link", "roundabout", "shortcut", "forward", "fwd_access", "rev_access", "way_id", "geom"}
	nodesCSVHeader = []string{"node", "first_edge", "edge_count", "geom"}
)

// GraphTile In-memory form of one graph tile
/*
	Edges are grouped by their start node: the outgoing edges of node i
	occupy Edges[Nodes[i].FirstEdge : Nodes[i].FirstEdge+Nodes[i].EdgeCount].
*/
type GraphTile struct {
	ID    GraphID
	Nodes []Node
	Edges []DirectedEdge
}

func tileFilePrefix(dir string, tileBase GraphID) string {
	return filepath.Join(dir, strconv.FormatUint(uint64(tileBase.Level()), 10), strconv.FormatUint(uint64(tileBase.TileID()), 10))
}

// WriteGraphTile persists edges and nodes files of one tile
func WriteGraphTile(dir string, tile *GraphTile) error {
	prefix := tileFilePrefix(dir, tile.ID)
	if err := os.MkdirAll(filepath.Dir(prefix), 0o755); err != nil {
		return errors.Wrap(err, "Can't create tile directory")
	}

	fileEdges, err := os.Create(prefix + "_edges.csv")
	if err != nil {
		return errors.Wrap(err, "Can't create edges file")
	}
	defer fileEdges.Close()
	writerEdges := csv.NewWriter(fileEdges)
	defer writerEdges.Flush()
	writerEdges.Comma = ';'

	err = writerEdges.Write(edgesCSVHeader)
	if err != nil {
		return errors.Wrap(err, "Can't write edges header")
	}
	for i := range tile.Edges {
		edge := &tile.Edges[i]
		err = writerEdges.Write([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", uint64(edge.EndNode)),
			fmt.Sprintf("%d", edge.OppIndex),
			fmt.Sprintf("%f", edge.LengthMeters),
			fmt.Sprintf("%d", edge.Class),
			fmt.Sprintf("%d", edge.Use),
			fmt.Sprintf("%t", edge.Link),
			fmt.Sprintf("%t", edge.Roundabout),
			fmt.Sprintf("%t", edge.Shortcut),
			fmt.Sprintf("%t", edge.Forward),
			fmt.Sprintf("%d", edge.ForwardAccess),
			fmt.Sprintf("%d", edge.ReverseAccess),
			fmt.Sprintf("%d", edge.WayID),
			wkt.MarshalString(edge.Geom),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write edge")
		}
	}

	fileNodes, err := os.Create(prefix + "_nodes.csv")
	if err != nil {
		return errors.Wrap(err, "Can't create nodes file")
	}
	defer fileNodes.Close()
	writerNodes := csv.NewWriter(fileNodes)
	defer writerNodes.Flush()
	writerNodes.Comma = ';'

	err = writerNodes.Write(nodesCSVHeader)
	if err != nil {
		return errors.Wrap(err, "Can't write nodes header")
	}
	for i := range tile.Nodes {
		node := &tile.Nodes[i]
		err = writerNodes.Write([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", node.FirstEdge),
			fmt.Sprintf("%d", node.EdgeCount),
			wkt.MarshalString(node.Point),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write node")
		}
	}
	return nil
}

func readCSVRows(fileName string, wantColumns int) ([][]string, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read CSV")
	}
	if len(rows) == 0 {
		return nil, errors.New("Empty CSV file")
	}
	for i, row := range rows {
		if len(row) != wantColumns {
			return nil, errors.Errorf("Row %d has %d columns, want %d", i, len(row), wantColumns)
		}
	}
	// drop header
	return rows[1:], nil
}

func readGraphTile(dir string, tileBase GraphID) (*GraphTile, error) {
	prefix := tileFilePrefix(dir, tileBase)
	tile := &GraphTile{ID: tileBase.TileBase()}

	edgeRows, err := readCSVRows(prefix+"_edges.csv", len(edgesCSVHeader))
	if err != nil {
		return nil, errors.Wrap(err, "Can't read edges")
	}
	tile.Edges = make([]DirectedEdge, 0, len(edgeRows))
	for i, row := range edgeRows {
		edge, err := parseEdgeRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse edge %d", i)
		}
		tile.Edges = append(tile.Edges, edge)
	}

	nodeRows, err := readCSVRows(prefix+"_nodes.csv", len(nodesCSVHeader))
	if err != nil {
		return nil, errors.Wrap(err, "Can't read nodes")
	}
	tile.Nodes = make([]Node, 0, len(nodeRows))
	for i, row := range nodeRows {
		node, err := parseNodeRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse node %d", i)
		}
		tile.Nodes = append(tile.Nodes, node)
	}
	return tile, nil
}

func parseEdgeRow(row []string) (DirectedEdge, error) {
	edge := DirectedEdge{}
	endNode, err := strconv.ParseUint(row[1], 10, 64)
	if err != nil {
		return edge, errors.Wrap(err, "Bad end node")
	}
	edge.EndNode = GraphID(endNode)
	oppIndex, err := strconv.ParseUint(row[2], 10, 32)
	if err != nil {
		return edge, errors.Wrap(err, "Bad opposite index")
	}
	edge.OppIndex = uint32(oppIndex)
	edge.LengthMeters, err = strconv.ParseFloat(row[3], 64)
	if err != nil {
		return edge, errors.Wrap(err, "Bad length")
	}
	class, err := strconv.ParseUint(row[4], 10, 8)
	if err != nil || class > uint64(ROAD_CLASS_SERVICE_OTHER) {
		return edge, errors.Errorf("Bad road class %s", row[4])
	}
	edge.Class = RoadClass(class)
	use, err := strconv.ParseUint(row[5], 10, 8)
	if err != nil || use > uint64(EDGE_USE_TRANSITION_DOWN) {
		return edge, errors.Errorf("Bad use %s", row[5])
	}
	edge.Use = EdgeUse(use)
	flags := []*bool{&edge.Link, &edge.Roundabout, &edge.Shortcut, &edge.Forward}
	for i, flag := range flags {
		*flag, err = strconv.ParseBool(row[6+i])
		if err != nil {
			return edge, errors.Wrap(err, "Bad flag")
		}
	}
	fwdAccess, err := strconv.ParseUint(row[10], 10, 32)
	if err != nil {
		return edge, errors.Wrap(err, "Bad forward access")
	}
	edge.ForwardAccess = uint32(fwdAccess)
	revAccess, err := strconv.ParseUint(row[11], 10, 32)
	if err != nil {
		return edge, errors.Wrap(err, "Bad reverse access")
	}
	edge.ReverseAccess = uint32(revAccess)
	wayID, err := strconv.ParseInt(row[12], 10, 64)
	if err != nil {
		return edge, errors.Wrap(err, "Bad way ID")
	}
	edge.WayID = osm.WayID(wayID)
	edge.Geom, err = wkt.UnmarshalLineString(row[13])
	if err != nil {
		return edge, errors.Wrap(err, "Bad geometry")
	}
	if len(edge.Geom) < 2 {
		return edge, errors.New("Geometry has less than 2 points")
	}
	return edge, nil
}

func parseNodeRow(row []string) (Node, error) {
	node := Node{}
	firstEdge, err := strconv.ParseUint(row[1], 10, 32)
	if err != nil {
		return node, errors.Wrap(err, "Bad first edge")
	}
	node.FirstEdge = uint32(firstEdge)
	edgeCount, err := strconv.ParseUint(row[2], 10, 32)
	if err != nil {
		return node, errors.Wrap(err, "Bad edge count")
	}
	node.EdgeCount = uint32(edgeCount)
	node.Point, err = wkt.UnmarshalPoint(row[3])
	if err != nil {
		return node, errors.Wrap(err, "Bad geometry")
	}
	return node, nil
}

// GraphReader Cached read access to the graph tile store
type GraphReader struct {
	tileDir string
	tiles   map[GraphID]*GraphTile
}

// NewGraphReader returns reader over given tile store directory
func NewGraphReader(tileDir string) *GraphReader {
	return &GraphReader{
		tileDir: tileDir,
		tiles:   make(map[GraphID]*GraphTile),
	}
}

// TileDir returns tile store directory of the reader
func (r *GraphReader) TileDir() string {
	return r.tileDir
}

// Tile returns tile owning given identifier, loading and caching it on first use
func (r *GraphReader) Tile(id GraphID) (*GraphTile, error) {
	base := id.TileBase()
	if tile, ok := r.tiles[base]; ok {
		return tile, nil
	}
	tile, err := readGraphTile(r.tileDir, base)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load tile %s", base)
	}
	r.tiles[base] = tile
	return tile, nil
}

// Edge returns directed edge record by identifier
func (r *GraphReader) Edge(id GraphID) (*DirectedEdge, error) {
	tile, err := r.Tile(id)
	if err != nil {
		return nil, err
	}
	if int(id.Index()) >= len(tile.Edges) {
		return nil, errors.Errorf("No edge %s in tile", id)
	}
	return &tile.Edges[id.Index()], nil
}

// Node returns node record by identifier
func (r *GraphReader) Node(id GraphID) (*Node, error) {
	tile, err := r.Tile(id)
	if err != nil {
		return nil, err
	}
	if int(id.Index()) >= len(tile.Nodes) {
		return nil, errors.Errorf("No node %s in tile", id)
	}
	return &tile.Nodes[id.Index()], nil
}

// EdgeShape returns edge geometry ordered along the traversal direction
func (r *GraphReader) EdgeShape(id GraphID) (orb.LineString, error) {
	edge, err := r.Edge(id)
	if err != nil {
		return nil, err
	}
	if edge.Forward {
		shape := make(orb.LineString, len(edge.Geom))
		copy(shape, edge.Geom)
		return shape, nil
	}
	return reverseLine(edge.Geom), nil
}

// OppEdgeID returns identifier of the opposing directed edge
func (r *GraphReader) OppEdgeID(id GraphID) (GraphID, error) {
	edge, err := r.Edge(id)
	if err != nil {
		return InvalidGraphID, err
	}
	node, err := r.Node(edge.EndNode)
	if err != nil {
		return InvalidGraphID, err
	}
	return edge.EndNode.TileBase().WithIndex(node.FirstEdge + edge.OppIndex), nil
}

// EdgeEndCoord returns coordinate of the node the edge leads to
func (r *GraphReader) EdgeEndCoord(id GraphID) (orb.Point, error) {
	edge, err := r.Edge(id)
	if err != nil {
		return orb.Point{}, err
	}
	node, err := r.Node(edge.EndNode)
	if err != nil {
		return orb.Point{}, err
	}
	return node.Point, nil
}

// EdgeStartCoord returns coordinate of the node the edge starts from
/*
	Resolved through the opposing edge: the start of an edge is the end
	of its opposite.
*/
func (r *GraphReader) EdgeStartCoord(id GraphID) (orb.Point, error) {
	oppID, err := r.OppEdgeID(id)
	if err != nil {
		return orb.Point{}, err
	}
	return r.EdgeEndCoord(oppID)
}

// EdgeBearing returns heading of the edge at given fractional offset along it
func (r *GraphReader) EdgeBearing(id GraphID, frac float64) (float64, error) {
	shape, err := r.EdgeShape(id)
	if err != nil {
		return 0, err
	}
	if frac > 0 {
		edge, err := r.Edge(id)
		if err != nil {
			return 0, err
		}
		Chop(&shape, frac*edge.LengthMeters)
	}
	return Bearing(shape), nil
}

// AllTileIDs returns base identifiers of every tile present in the store
func (r *GraphReader) AllTileIDs() ([]GraphID, error) {
	ids := []GraphID{}
	err := filepath.WalkDir(r.tileDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, "_edges.csv") {
			return nil
		}
		rel, err := filepath.Rel(r.tileDir, path)
		if err != nil {
			return err
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 2 {
			return nil
		}
		level, err := strconv.ParseUint(parts[0], 10, 32)
		if err != nil {
			return nil
		}
		tileID, err := strconv.ParseUint(strings.TrimSuffix(parts[1], "_edges.csv"), 10, 32)
		if err != nil {
			return nil
		}
		ids = append(ids, NewGraphID(uint32(level), uint32(tileID), 0))
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't scan tile store")
	}
	return ids, nil
}
