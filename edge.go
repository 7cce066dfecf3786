package osmlr2graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Vehicular access mask bits for a single traversal direction
const (
	ACCESS_AUTO = uint32(1 << iota)
	ACCESS_PEDESTRIAN
	ACCESS_BICYCLE
	ACCESS_TRUCK
	ACCESS_EMERGENCY
	ACCESS_TAXI
	ACCESS_BUS
	ACCESS_HOV
)

// VehicularAccess Any motorized mode whose traffic we want to collect
const VehicularAccess = ACCESS_AUTO | ACCESS_TRUCK | ACCESS_TAXI | ACCESS_BUS | ACCESS_HOV

// RoadClass Coarse importance of a road, motorway is the most important
type RoadClass uint8

const (
	ROAD_CLASS_MOTORWAY = RoadClass(iota)
	ROAD_CLASS_TRUNK
	ROAD_CLASS_PRIMARY
	ROAD_CLASS_SECONDARY
	ROAD_CLASS_TERTIARY
	ROAD_CLASS_UNCLASSIFIED
	ROAD_CLASS_RESIDENTIAL
	ROAD_CLASS_SERVICE_OTHER
)

func (iotaIdx RoadClass) String() string {
	return [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "unclassified", "residential", "service_other"}[iotaIdx]
}

// EdgeUse Specialized purpose of an edge
type EdgeUse uint8

const (
	EDGE_USE_ROAD = EdgeUse(iota)
	EDGE_USE_FERRY
	EDGE_USE_TRANSIT_CONNECTION
	EDGE_USE_TRANSITION_UP
	EDGE_USE_TRANSITION_DOWN
)

func (iotaIdx EdgeUse) String() string {
	return [...]string{"road", "ferry", "transit_connection", "transition_up", "transition_down"}[iotaIdx]
}

// Node Graph node: a point where edges meet
/*
	Outgoing edges of a node are stored contiguously in the owning tile,
	starting at FirstEdge.
*/
type Node struct {
	Point     orb.Point
	FirstEdge uint32
	EdgeCount uint32
}

// DirectedEdge One traversal direction of a road between two nodes
/*
	Geom is stored once per edge pair; Forward reports whether this
	direction follows the stored point order. EndNode may belong to
	another tile. OppIndex is the position of the opposing edge among
	the end node's outgoing edges.
*/
type DirectedEdge struct {
	EndNode       GraphID
	OppIndex      uint32
	LengthMeters  float64
	Class         RoadClass
	Use           EdgeUse
	Link          bool
	Roundabout    bool
	Shortcut      bool
	Forward       bool
	ForwardAccess uint32
	ReverseAccess uint32
	WayID         osm.WayID
	Geom          orb.LineString
}
