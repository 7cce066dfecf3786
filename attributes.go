package osmlr2graph

// FormOfWay Categorical description of physical road type
/*
	Codes follow the OSMLR wire values.
*/
type FormOfWay uint8

const (
	FOW_UNDEFINED = FormOfWay(iota)
	FOW_MOTORWAY
	FOW_MULTIPLE_CARRIAGEWAY
	FOW_SINGLE_CARRIAGEWAY
	FOW_ROUNDABOUT
	FOW_TRAFFIC_SQUARE
	FOW_SLIP_ROAD
	FOW_OTHER
)

func (iotaIdx FormOfWay) String() string {
	return [...]string{"undefined", "motorway", "multiple_carriageway", "single_carriageway", "roundabout", "traffic_square", "sliproad", "other"}[iotaIdx]
}

// edgePred returns false for edges which never carry regular traffic
func edgePred(edge *DirectedEdge) bool {
	return edge.Use != EDGE_USE_FERRY &&
		edge.Use != EDGE_USE_TRANSIT_CONNECTION &&
		edge.Use != EDGE_USE_TRANSITION_UP &&
		edge.Use != EDGE_USE_TRANSITION_DOWN
}

// CheckAccess reports whether an edge can carry vehicular traffic in its traversal direction
/*
	Shortcuts and special-purpose edges are rejected outright. Access is
	permissive otherwise: any motorized mode counts, since we do want to
	collect traffic on most vehicular routes.
*/
func CheckAccess(edge *DirectedEdge) bool {
	// if any edge is a shortcut, then drop the whole path
	if edge.Shortcut {
		return false
	}
	if !edgePred(edge) {
		return false
	}
	return edge.ForwardAccess&VehicularAccess != 0
}

// IsOneway reports whether no vehicular mode may traverse the edge in reverse
func IsOneway(edge *DirectedEdge) bool {
	return edge.ReverseAccess&VehicularAccess == 0
}

// FormOfWayForEdge derives form of way from edge attributes
func FormOfWayForEdge(edge *DirectedEdge) FormOfWay {
	oneway := IsOneway(edge)
	rclass := edge.Class

	switch {
	case edge.Link:
		return FOW_SLIP_ROAD
	case edge.Roundabout:
		return FOW_ROUNDABOUT
	// one-way motorways are likely to be grade separated
	case rclass == ROAD_CLASS_MOTORWAY && oneway:
		return FOW_MOTORWAY
	// a one-way major road might be one half of a dual carriageway
	case rclass <= ROAD_CLASS_TERTIARY && oneway:
		return FOW_MULTIPLE_CARRIAGEWAY
	case rclass <= ROAD_CLASS_TERTIARY:
		return FOW_SINGLE_CARRIAGEWAY
	default:
		return FOW_OTHER
	}
}
