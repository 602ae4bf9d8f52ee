package dom

// Descendants returns elements under n (n excluded) accepted by match in
// document order. When skipMatched is set the subtree of an accepted element
// is not searched any further.
//
// Backends disagree on the order of descendant path queries (etree collects
// breadth first, XPath in document order), so every pass that creates nodes
// and therefore consumes ID counters walks the tree with this function.
func Descendants(a Adapter, n Node, match func(tag string) bool, skipMatched bool) []Node {
	var res []Node
	var walk func(Node)
	walk = func(cur Node) {
		for _, c := range a.ChildNodes(cur) {
			if !IsElement(a, c) {
				continue
			}
			if match(a.Type(c)) {
				res = append(res, c)
				if skipMatched {
					continue
				}
			}
			walk(c)
		}
	}
	walk(n)
	return res
}

// Tags builds a match function for Descendants.
func Tags(tags ...string) func(string) bool {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return func(tag string) bool {
		_, ok := set[tag]
		return ok
	}
}
