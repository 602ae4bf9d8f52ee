package dom

// Iterator walks a fixed list of sibling nodes and can step back once a
// consumer decides a node belongs to somebody else.
type Iterator struct {
	nodes []Node
	pos   int
}

// NewIterator creates iterator positioned before the first node.
func NewIterator(nodes []Node) *Iterator {
	return &Iterator{nodes: nodes, pos: -1}
}

// ChildIterator iterates over all child nodes of n.
func ChildIterator(a Adapter, n Node) *Iterator {
	return NewIterator(a.ChildNodes(n))
}

func (it *Iterator) HasNext() bool {
	return it.pos < len(it.nodes)-1
}

func (it *Iterator) Next() Node {
	it.pos++
	return it.nodes[it.pos]
}

// Back un-reads the last node returned by Next.
func (it *Iterator) Back() *Iterator {
	if it.pos >= 0 {
		it.pos--
	}
	return it
}
