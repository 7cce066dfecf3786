package osmlr2graph

import (
	"os"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// DumpGeoJSON writes accumulated association results as a GeoJSON feature collection
/*
	One linestring feature per association record carrying edge,
	segment and fraction properties, plus one per deferred chunk.
	Intended for visual inspection; call before Finish releases the
	builders.
*/
func (a *Associator) DumpGeoJSON(fileName string) error {
	fc := geojson.NewFeatureCollection()

	for tileID, builder := range a.tiles {
		for edgeIndex, associations := range builder.assoc {
			edgeID := tileID.WithIndex(edgeIndex)
			shape, err := a.reader.EdgeShape(edgeID)
			if err != nil {
				return err
			}
			for _, association := range associations {
				feature := geojson.NewLineStringFeature(lineTo2D(shape))
				feature.SetProperty("edge_id", uint64(edgeID))
				feature.SetProperty("segment_id", uint64(association.SegmentID))
				feature.SetProperty("begin_pct", association.BeginPct)
				feature.SetProperty("end_pct", association.EndPct)
				fc.AddFeature(feature)
			}
		}
	}

	for _, chunk := range a.chunks {
		for _, edgeID := range chunk.Edges {
			shape, err := a.reader.EdgeShape(edgeID)
			if err != nil {
				return err
			}
			feature := geojson.NewLineStringFeature(lineTo2D(shape))
			feature.SetProperty("edge_id", uint64(edgeID))
			feature.SetProperty("segment_id", uint64(chunk.Segments[0]))
			feature.SetProperty("deferred", true)
			fc.AddFeature(feature)
		}
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't convert associations to geojson format")
	}
	return errors.Wrap(os.WriteFile(fileName, data, 0o644), "Can't write geojson file")
}

// lineTo2D converts line to the raw coordinate layout geojson features expect
func lineTo2D(line orb.LineString) [][]float64 {
	pts2d := make([][]float64, len(line))
	for i := range line {
		pts2d[i] = []float64{line[i].Lon(), line[i].Lat()}
	}
	return pts2d
}
