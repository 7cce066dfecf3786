package osmlr2graph

import (
	"container/heap"
)

// PathInfo One traversed edge of a found path with cost elapsed so far
type PathInfo struct {
	EdgeID      GraphID
	ElapsedCost float64
}

type edgeLabel struct {
	cost    float64
	pred    GraphID
	settled bool
}

type searchItem struct {
	edgeID   GraphID
	sortCost float64
	index    int
}

type searchQueue []*searchItem

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	return q[i].sortCost < q[j].sortCost
}

func (q searchQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *searchQueue) Push(x interface{}) {
	item := x.(*searchItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *searchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[0 : n-1]
	return item
}

// AStarPathAlgorithm Edge-based A* search with reusable scratch state
/*
	Scratch state survives between calls; Clear must be invoked before
	each use so results from a previous search never leak into the next.
*/
type AStarPathAlgorithm struct {
	labels   map[GraphID]*edgeLabel
	frontier searchQueue
}

// NewAStarPathAlgorithm returns path search with empty scratch state
func NewAStarPathAlgorithm() *AStarPathAlgorithm {
	return &AStarPathAlgorithm{
		labels: make(map[GraphID]*edgeLabel),
	}
}

// Clear resets scratch state of the previous search
func (a *AStarPathAlgorithm) Clear() {
	a.labels = make(map[GraphID]*edgeLabel)
	a.frontier = a.frontier[:0]
}

// GetBestPath returns cheapest edge sequence from origin to destination candidates
/*
	The path starts on one of the origin's candidate edges (its cost
	scaled by the remaining fraction of the edge) and ends on the first
	settled destination candidate edge. Returns an empty result when the
	destination is unreachable.
*/
func (a *AStarPathAlgorithm) GetBestPath(origin, dest *PathLocation, reader *GraphReader, costing Costing) ([]PathInfo, error) {
	destPcts := make(map[GraphID]float64, len(dest.Edges))
	for _, candidate := range dest.Edges {
		destPcts[candidate.EdgeID] = candidate.PercentAlong
	}
	originPcts := make(map[GraphID]float64, len(origin.Edges))
	for _, candidate := range origin.Edges {
		originPcts[candidate.EdgeID] = candidate.PercentAlong
	}

	factor := costing.AStarCostFactor()
	heap.Init(&a.frontier)

	for _, candidate := range origin.Edges {
		edge, err := reader.Edge(candidate.EdgeID)
		if err != nil {
			return nil, err
		}
		if !costing.Allowed(edge) {
			continue
		}
		cost := costing.EdgeCost(edge) * (1.0 - candidate.PercentAlong)
		if known, ok := a.labels[candidate.EdgeID]; ok && known.cost <= cost {
			continue
		}
		a.labels[candidate.EdgeID] = &edgeLabel{cost: cost, pred: InvalidGraphID}
		endCoord, err := reader.EdgeEndCoord(candidate.EdgeID)
		if err != nil {
			return nil, err
		}
		heap.Push(&a.frontier, &searchItem{
			edgeID:   candidate.EdgeID,
			sortCost: cost + DistanceMeters(endCoord, dest.Point)*factor,
		})
	}

	for a.frontier.Len() > 0 {
		current := heap.Pop(&a.frontier).(*searchItem)
		label := a.labels[current.edgeID]
		if label.settled {
			continue
		}
		label.settled = true

		if destPct, ok := destPcts[current.edgeID]; ok {
			// a trivial single-edge path is only valid when the
			// destination projection lies ahead of the origin one
			if label.pred.Valid() || originPcts[current.edgeID] <= destPct {
				return a.recoverPath(current.edgeID), nil
			}
		}

		edge, err := reader.Edge(current.edgeID)
		if err != nil {
			return nil, err
		}
		node, err := reader.Node(edge.EndNode)
		if err != nil {
			return nil, err
		}
		if !costing.AllowedNode() {
			continue
		}
		oppID, err := reader.OppEdgeID(current.edgeID)
		if err != nil {
			return nil, err
		}

		nodeTileBase := edge.EndNode.TileBase()
		for i := uint32(0); i < node.EdgeCount; i++ {
			nextID := nodeTileBase.WithIndex(node.FirstEdge + i)
			if nextID == oppID {
				// no immediate U-turns
				continue
			}
			nextEdge, err := reader.Edge(nextID)
			if err != nil {
				return nil, err
			}
			if !costing.Allowed(nextEdge) {
				continue
			}
			newCost := label.cost + costing.EdgeCost(nextEdge)
			if known, ok := a.labels[nextID]; ok && known.cost <= newCost {
				continue
			}
			a.labels[nextID] = &edgeLabel{cost: newCost, pred: current.edgeID}
			endCoord, err := reader.EdgeEndCoord(nextID)
			if err != nil {
				return nil, err
			}
			heap.Push(&a.frontier, &searchItem{
				edgeID:   nextID,
				sortCost: newCost + DistanceMeters(endCoord, dest.Point)*factor,
			})
		}
	}

	// destination unreachable
	return nil, nil
}

func (a *AStarPathAlgorithm) recoverPath(last GraphID) []PathInfo {
	reversed := []PathInfo{}
	for id := last; id.Valid(); id = a.labels[id].pred {
		reversed = append(reversed, PathInfo{EdgeID: id, ElapsedCost: a.labels[id].cost})
	}
	path := make([]PathInfo, len(reversed))
	for i, info := range reversed {
		path[len(path)-1-i] = info
	}
	return path
}
