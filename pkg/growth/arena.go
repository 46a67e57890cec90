package growth

import (
	"time"

	"github.com/sanonone/glyphgarden/pkg/types"
	"github.com/tidwall/btree"
)

// Clock supplies timestamps for node layers, reading events and reflections.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func nodeLess(a, b *types.Node) bool { return a.ID < b.ID }

// arena owns every live node, ordered by id. Since ids are sequential the
// order is also the creation order.
type arena struct {
	tree *btree.BTreeG[*types.Node]
}

func newArena() *arena {
	return &arena{tree: btree.NewBTreeG[*types.Node](nodeLess)}
}

func (a *arena) put(n *types.Node) { a.tree.Set(n) }

func (a *arena) get(id types.NodeID) (*types.Node, bool) {
	return a.tree.Get(&types.Node{ID: id})
}

func (a *arena) len() int { return a.tree.Len() }

// all returns the live nodes in creation order.
func (a *arena) all() []*types.Node {
	out := make([]*types.Node, 0, a.tree.Len())
	a.tree.Scan(func(n *types.Node) bool {
		out = append(out, n)
		return true
	})
	return out
}

// keepNewest rebuilds the arena with the n most recent nodes and returns the
// ids that were dropped. Children are always newer than their parent, so the
// child lists of survivors stay valid; parent ids remain weak references.
func (a *arena) keepNewest(n int) map[types.NodeID]struct{} {
	dropped := make(map[types.NodeID]struct{})
	if a.tree.Len() <= n {
		return dropped
	}

	next := btree.NewBTreeG[*types.Node](nodeLess)
	a.tree.Reverse(func(node *types.Node) bool {
		if next.Len() < n {
			next.Set(node)
		} else {
			dropped[node.ID] = struct{}{}
		}
		return true
	})

	a.tree = next
	return dropped
}
