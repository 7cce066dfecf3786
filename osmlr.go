package osmlr2graph

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Fixed-point scale of OSMLR coordinates
const coordScale = 10000000.0

var osmlrMagic = [5]byte{'O', 'S', 'M', 'L', 'R'}

const osmlrVersion = byte(1)

// LocationReference One waypoint of an OSMLR segment
/*
	Lon/Lat are signed fixed-point degrees scaled by 1e7. LengthMeters
	describes the distance to the next reference point and is zero on
	the final one.
*/
type LocationReference struct {
	Lon          int32
	Lat          int32
	Bearing      uint16
	FRC          uint8
	FOW          FormOfWay
	LengthMeters uint32
}

// Coord decodes fixed-point coordinate to degrees
func (lrp LocationReference) Coord() orb.Point {
	return orb.Point{float64(lrp.Lon) / coordScale, float64(lrp.Lat) / coordScale}
}

// Segment Ordered list of location reference points describing one real-world path
type Segment struct {
	LRPs []LocationReference
}

// TileEntry Single entry of an OSMLR tile: either a marker or a segment
type TileEntry struct {
	Marker  bool
	Segment *Segment
}

// OSMLRTile Container of ordered tile entries
type OSMLRTile struct {
	Entries []TileEntry
}

// DecodeOSMLRTile parses binary OSMLR tile container
/*
	Any structural violation (bad magic, unknown version, truncation,
	segment with fewer than two reference points) is an error: malformed
	input aborts the whole run.
*/
func DecodeOSMLRTile(r io.Reader) (*OSMLRTile, error) {
	var magic [5]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "Can't read magic")
	}
	if magic != osmlrMagic {
		return nil, errors.Errorf("Bad magic %q", magic[:])
	}
	var version byte
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, errors.Wrap(err, "Can't read version")
	}
	if version != osmlrVersion {
		return nil, errors.Errorf("Unsupported OSMLR tile version %d", version)
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "Can't read entry count")
	}

	tile := &OSMLRTile{Entries: make([]TileEntry, 0, count)}
	for i := uint32(0); i < count; i++ {
		var kind byte
		if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, errors.Wrapf(err, "Can't read kind of entry %d", i)
		}
		switch kind {
		case 0:
			tile.Entries = append(tile.Entries, TileEntry{Marker: true})
		case 1:
			segment, err := decodeSegment(r)
			if err != nil {
				return nil, errors.Wrapf(err, "Can't decode segment of entry %d", i)
			}
			tile.Entries = append(tile.Entries, TileEntry{Segment: segment})
		default:
			return nil, errors.Errorf("Unknown kind %d of entry %d", kind, i)
		}
	}
	return tile, nil
}

func decodeSegment(r io.Reader) (*Segment, error) {
	var lrpCount uint8
	if err := binary.Read(r, binary.LittleEndian, &lrpCount); err != nil {
		return nil, errors.Wrap(err, "Can't read reference point count")
	}
	if lrpCount < 2 {
		return nil, errors.Errorf("Segment must have at least 2 reference points, got %d", lrpCount)
	}
	segment := &Segment{LRPs: make([]LocationReference, lrpCount)}
	for i := range segment.LRPs {
		lrp := &segment.LRPs[i]
		var fow uint8
		fields := []interface{}{&lrp.Lon, &lrp.Lat, &lrp.Bearing, &lrp.FRC, &fow, &lrp.LengthMeters}
		for _, field := range fields {
			if err := binary.Read(r, binary.LittleEndian, field); err != nil {
				return nil, errors.Wrapf(err, "Can't read reference point %d", i)
			}
		}
		if lrp.Bearing >= 360 {
			return nil, errors.Errorf("Bearing %d of reference point %d out of range", lrp.Bearing, i)
		}
		if lrp.FRC > 7 || fow > 7 {
			return nil, errors.Errorf("Classification of reference point %d out of range", i)
		}
		lrp.FOW = FormOfWay(fow)
	}
	return segment, nil
}

// EncodeOSMLRTile serializes tile container to binary form
func EncodeOSMLRTile(w io.Writer, tile *OSMLRTile) error {
	buf := &bytes.Buffer{}
	buf.Write(osmlrMagic[:])
	buf.WriteByte(osmlrVersion)
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(tile.Entries))); err != nil {
		return errors.Wrap(err, "Can't write entry count")
	}
	for i, entry := range tile.Entries {
		if entry.Segment == nil {
			buf.WriteByte(0)
			continue
		}
		buf.WriteByte(1)
		segment := entry.Segment
		if len(segment.LRPs) < 2 || len(segment.LRPs) > 255 {
			return errors.Errorf("Segment of entry %d has bad reference point count %d", i, len(segment.LRPs))
		}
		buf.WriteByte(uint8(len(segment.LRPs)))
		for _, lrp := range segment.LRPs {
			fields := []interface{}{lrp.Lon, lrp.Lat, lrp.Bearing, lrp.FRC, uint8(lrp.FOW), lrp.LengthMeters}
			for _, field := range fields {
				if err := binary.Write(buf, binary.LittleEndian, field); err != nil {
					return errors.Wrap(err, "Can't write reference point")
				}
			}
		}
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "Can't write tile")
}

// ReadOSMLRTileFile reads and decodes a single *.osmlr file
func ReadOSMLRTileFile(fileName string) (*OSMLRTile, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer f.Close()
	return DecodeOSMLRTile(f)
}

// ParseTileBaseID derives tile base identifier from an OSMLR file path
/*
	Expected layout mirrors the graph tile hierarchy: the trailing
	three-digit path components joined together form the tile identifier
	and the component just before them is the level, e.g.
	"2/000/601/422.osmlr" names tile 601422 on level 2. Anchoring on the
	tail keeps numeric directories earlier in the path out of the result.
*/
func ParseTileBaseID(fileName string) (GraphID, error) {
	trimmed := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	parts := strings.Split(filepath.ToSlash(trimmed), "/")

	groups := []string{}
	last := len(parts) - 1
	for ; last >= 0; last-- {
		part := parts[last]
		if len(part) != 3 || !allDigits(part) {
			break
		}
		groups = append([]string{part}, groups...)
	}
	if len(groups) == 0 || last < 0 {
		return InvalidGraphID, errors.Errorf("Can't derive tile ID from path %s", fileName)
	}

	level, err := strconv.ParseUint(parts[last], 10, 32)
	if err != nil || uint32(level) > maxGraphLevel {
		return InvalidGraphID, errors.Errorf("Bad level in path %s", fileName)
	}
	tileID, err := strconv.ParseUint(strings.Join(groups, ""), 10, 32)
	if err != nil || uint32(tileID) > maxGraphTileID {
		return InvalidGraphID, errors.Errorf("Bad tile ID in path %s", fileName)
	}
	return NewGraphID(uint32(level), uint32(tileID), 0), nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
