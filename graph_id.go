package osmlr2graph

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GraphID Packed identifier of an object inside the tiled graph.
/*
	Bit layout (least significant first):
		3 bits  - hierarchy level
		22 bits - tile identifier within the level
		21 bits - object index within the tile
*/
type GraphID uint64

const (
	maxGraphLevel  = uint32(7)
	maxGraphTileID = uint32(1<<22 - 1)
	maxGraphIndex  = uint32(1<<21 - 1)

	// InvalidGraphID marks an unset identifier
	InvalidGraphID = GraphID(math.MaxUint64)
)

// NewGraphID returns identifier composed of level, tile and object index
func NewGraphID(level, tileID, index uint32) GraphID {
	return GraphID(uint64(level&maxGraphLevel) | uint64(tileID&maxGraphTileID)<<3 | uint64(index&maxGraphIndex)<<25)
}

// Level returns hierarchy level of identifier
func (id GraphID) Level() uint32 {
	return uint32(id & 0x7)
}

// TileID returns tile identifier within the level
func (id GraphID) TileID() uint32 {
	return uint32(id>>3) & maxGraphTileID
}

// Index returns object index within the tile
func (id GraphID) Index() uint32 {
	return uint32(id>>25) & maxGraphIndex
}

// TileBase returns identifier of the owning tile (object index zeroed)
func (id GraphID) TileBase() GraphID {
	return id & GraphID(1<<25-1)
}

// WithIndex returns identifier pointing to the given object index inside the same tile
func (id GraphID) WithIndex(index uint32) GraphID {
	return id.TileBase() | GraphID(uint64(index&maxGraphIndex)<<25)
}

// Valid reports whether identifier has been set
func (id GraphID) Valid() bool {
	return id != InvalidGraphID
}

// String Pretty printing for GraphID
func (id GraphID) String() string {
	return fmt.Sprintf("GraphID(%d, %d, %d)", id.TileID(), id.Level(), id.Index())
}

// Tile sizes in degrees for each hierarchy level
var tileSizes = [3]float64{4.0, 1.0, 0.25}

// TileIDFromCoord returns tile identifier of the tile covering given coordinate on given level
func TileIDFromCoord(level uint32, pt orb.Point) uint32 {
	size := tileSizes[level]
	ncols := uint32(360.0 / size)
	col := uint32((pt.Lon() + 180.0) / size)
	row := uint32((pt.Lat() + 90.0) / size)
	return row*ncols + col
}
