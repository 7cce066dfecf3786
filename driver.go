package osmlr2graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// RunStats Counters accumulated over one association run
type RunStats struct {
	Segments  int
	OneToOne  int
	OneToMany int
	Deferred  int
	Discarded int
}

// Associator Associates OSMLR segment descriptors with edges of the routing graph
/*
	Owns every piece of mutable run state: the tile reader, the spatial
	index, the path search scratch, the per-tile builder map and the
	deferred chunk list. Strictly sequential; no locking.
*/
type Associator struct {
	reader   *GraphReader
	index    *EdgeIndex
	pathAlgo *AStarPathAlgorithm
	costing  Costing
	// map of tile ID to the builder for that tile
	tiles  map[GraphID]*TileBuilder
	chunks []PartialChunk
	stats  RunStats
}

// NewAssociator returns associator over given graph reader
func NewAssociator(reader *GraphReader, searchRadiusMeters float64) (*Associator, error) {
	index, err := NewEdgeIndex(reader, searchRadiusMeters)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build spatial index")
	}
	return &Associator{
		reader:   reader,
		index:    index,
		pathAlgo: NewAStarPathAlgorithm(),
		costing:  NewDistanceOnlyCost(),
		tiles:    make(map[GraphID]*TileBuilder),
	}, nil
}

// AddTile processes one OSMLR tile file
/*
	Every entry gets a stable identifier derived from the file's tile
	base and the entry's position; marker entries are skipped but still
	consume an index. A malformed file aborts the run.
*/
func (a *Associator) AddTile(fileName string) error {
	tile, err := ReadOSMLRTileFile(fileName)
	if err != nil {
		return errors.Wrapf(err, "Unable to parse traffic segment file %s", fileName)
	}
	baseID, err := ParseTileBaseID(fileName)
	if err != nil {
		return err
	}

	for entryID, entry := range tile.Entries {
		if entry.Segment == nil {
			continue
		}
		a.stats.Segments++
		if err := a.matchSegment(baseID.WithIndex(uint32(entryID)), entry.Segment); err != nil {
			return errors.Wrapf(err, "Can't match segment %d of %s", entryID, fileName)
		}
	}
	return nil
}

// Finish persists accumulated associations of every touched tile and releases the builders
/*
	Deferred chunks stay in memory: the reconciliation pass stitching
	them across tile boundaries is not implemented.
*/
func (a *Associator) Finish() error {
	for tileID, builder := range a.tiles {
		if err := builder.Update(); err != nil {
			return errors.Wrapf(err, "Can't update tile %s", tileID)
		}
	}
	a.tiles = make(map[GraphID]*TileBuilder)

	fmt.Printf("Matched %d segments: %d one-to-one, %d one-to-many, %d deferred, %d discarded\n",
		a.stats.Segments, a.stats.OneToOne, a.stats.OneToMany, a.stats.Deferred, a.stats.Discarded)
	return nil
}

// Chunks returns deferred partial matches collected so far
func (a *Associator) Chunks() []PartialChunk {
	return a.chunks
}

// Stats returns counters of the run
func (a *Associator) Stats() RunStats {
	return a.stats
}
