package osmlr2graph

// Costing Pluggable edge traversal cost policy for the path search
/*
	The search engine consults Allowed before expanding an edge,
	EdgeCost for its traversal cost and AStarCostFactor to scale the
	distance heuristic (a factor of at most 1 keeps it admissible when
	costs are measured in meters).
*/
type Costing interface {
	Allowed(edge *DirectedEdge) bool
	AllowedNode() bool
	EdgeCost(edge *DirectedEdge) float64
	AStarCostFactor() float64
}

// DistanceOnlyCost Costing which optimizes for pure shortest distance
/*
	Used to keep path search behaviorally simple and deterministic for
	matching: no travel times, no restrictions beyond basic vehicular
	accessibility.
*/
type DistanceOnlyCost struct{}

// NewDistanceOnlyCost returns distance-only costing
func NewDistanceOnlyCost() *DistanceOnlyCost {
	return &DistanceOnlyCost{}
}

// Allowed reports whether the edge may appear on a matched path
func (c *DistanceOnlyCost) Allowed(edge *DirectedEdge) bool {
	return CheckAccess(edge)
}

// AllowedNode disables any node-level filtering
func (c *DistanceOnlyCost) AllowedNode() bool {
	return true
}

// EdgeCost returns physical edge length as its traversal cost
func (c *DistanceOnlyCost) EdgeCost(edge *DirectedEdge) float64 {
	return edge.LengthMeters
}

// AStarCostFactor returns heuristic scaling factor
func (c *DistanceOnlyCost) AStarCostFactor() float64 {
	return 1.0
}
