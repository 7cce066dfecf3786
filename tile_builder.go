package osmlr2graph

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/pkg/errors"
)

var associationsCSVHeader = []string{"edge", "segment_id", "begin_pct", "end_pct", "weight"}

// Association Mapping of an edge to the fraction of a segment it covers
type Association struct {
	SegmentID GraphID
	BeginPct  float64
	EndPct    float64
	Weight    float64
}

// TileBuilder Write access to one graph tile, accumulating segment associations
/*
	Created lazily on the first edge touching the tile and kept alive
	until Update persists everything at the end of a run.
*/
type TileBuilder struct {
	tileID  GraphID
	tileDir string
	assoc   map[uint32][]Association
}

// NewTileBuilder returns builder for given tile
func NewTileBuilder(tileDir string, tileID GraphID) *TileBuilder {
	return &TileBuilder{
		tileID:  tileID.TileBase(),
		tileDir: tileDir,
		assoc:   make(map[uint32][]Association),
	}
}

// AddAssociation appends association record for given edge of the tile
func (b *TileBuilder) AddAssociation(edgeID GraphID, association Association) {
	b.assoc[edgeID.Index()] = append(b.assoc[edgeID.Index()], association)
}

// Update persists accumulated associations back to the tile store
/*
	Written to a temporary file first and renamed into place, replacing
	any previous associations of the tile.
*/
func (b *TileBuilder) Update() error {
	fileName := tileFilePrefix(b.tileDir, b.tileID) + "_associations.csv"
	f, err := os.CreateTemp(b.tileDir, "associations")
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer os.Remove(f.Name())

	writer := csv.NewWriter(f)
	writer.Comma = ';'
	err = writer.Write(associationsCSVHeader)
	if err != nil {
		f.Close()
		return errors.Wrap(err, "Can't write header")
	}

	edgeIndices := make([]uint32, 0, len(b.assoc))
	for edgeIndex := range b.assoc {
		edgeIndices = append(edgeIndices, edgeIndex)
	}
	sort.Slice(edgeIndices, func(i, j int) bool { return edgeIndices[i] < edgeIndices[j] })

	for _, edgeIndex := range edgeIndices {
		for _, association := range b.assoc[edgeIndex] {
			err = writer.Write([]string{
				fmt.Sprintf("%d", edgeIndex),
				fmt.Sprintf("%d", uint64(association.SegmentID)),
				fmt.Sprintf("%f", association.BeginPct),
				fmt.Sprintf("%f", association.EndPct),
				fmt.Sprintf("%f", association.Weight),
			})
			if err != nil {
				f.Close()
				return errors.Wrap(err, "Can't write association")
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return errors.Wrap(err, "Can't flush associations")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "Can't close file")
	}
	if err := os.Rename(f.Name(), fileName); err != nil {
		return errors.Wrap(err, "Can't move associations into place")
	}
	return nil
}
