package routefinder

import "github.com/strax84mb/travel-advisor/internal/domain"

type nodeStatus uint8

const (
	statusUnexpanded nodeStatus = iota
	statusExpanded
	statusPruned
)

func (s nodeStatus) String() string {
	switch s {
	case statusExpanded:
		return "expanded"
	case statusPruned:
		return "pruned"
	default:
		return "unexpanded"
	}
}

// Node is one vertex of the search tree: having arrived at via.Finish over
// the via route with an accumulated price. A node owns its children and keeps
// no reference to its parent.
type Node struct {
	price    int64
	via      domain.Route
	children []*Node
	status   nodeStatus
}

func newRoot(start int64) *Node {
	return &Node{via: domain.Route{Finish: start}}
}

// Airport returns the id of the airport this node stands at.
func (n *Node) Airport() int64 {
	return n.via.Finish
}

// Price returns the accumulated price from the root to this node.
func (n *Node) Price() int64 {
	return n.price
}

// setStatus applies a status transition. Only unexpanded->expanded,
// unexpanded->pruned and expanded->pruned are allowed; anything else is
// ignored and reported as false.
func (n *Node) setStatus(next nodeStatus) bool {
	switch {
	case n.status == statusUnexpanded && next != statusUnexpanded:
	case n.status == statusExpanded && next == statusPruned:
	default:
		return false
	}
	n.status = next
	if next == statusPruned {
		n.children = nil
	}
	return true
}
