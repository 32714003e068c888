package ui

// Append attaches children to the end of n, detaching them from any previous
// parent first.
func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		if child == nil {
			continue
		}
		child.Detach()
		child.parent = n
		n.children = append(n.children, child)
	}
	return n
}

// InsertAt places child at index, clamping out-of-range indexes.
func (n *Node) InsertAt(index int, child *Node) *Node {
	if child == nil {
		return n
	}
	child.Detach()
	if index < 0 {
		index = 0
	}
	if index > len(n.children) {
		index = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	child.parent = n
	return n
}

// Detach removes n from its parent. Listeners and state are kept.
func (n *Node) Detach() {
	if n == nil || n.parent == nil {
		return
	}
	parent := n.parent
	for i, child := range parent.children {
		if child == n {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Clear removes every child.
func (n *Node) Clear() {
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Parent returns the parent node or nil for a root.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Index reports the position of n among its siblings, or -1 when detached.
func (n *Node) Index() int {
	if n == nil || n.parent == nil {
		return -1
	}
	for i, child := range n.parent.children {
		if child == n {
			return i
		}
	}
	return -1
}

// Swap exchanges the children at positions i and j.
func (n *Node) Swap(i, j int) bool {
	if i < 0 || j < 0 || i >= len(n.children) || j >= len(n.children) {
		return false
	}
	n.children[i], n.children[j] = n.children[j], n.children[i]
	return true
}

// Matcher selects nodes in queries.
type Matcher func(*Node) bool

// ByAttr matches nodes carrying key.
func ByAttr(key string) Matcher {
	return func(n *Node) bool { return n.HasAttr(key) }
}

// ByAttrValue matches nodes whose key attribute equals value.
func ByAttrValue(key, value string) Matcher {
	return func(n *Node) bool {
		got, ok := n.Attr(key)
		return ok && got == value
	}
}

// ByTag matches element names.
func ByTag(tags ...string) Matcher {
	return func(n *Node) bool {
		for _, tag := range tags {
			if n.Tag == tag {
				return true
			}
		}
		return false
	}
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children() {
		child.Walk(fn)
	}
}

// Find returns the first descendant (excluding n) matching m.
func (n *Node) Find(m Matcher) *Node {
	for _, child := range n.children {
		if m(child) {
			return child
		}
		if found := child.Find(m); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant (excluding n) matching m in document order.
func (n *Node) FindAll(m Matcher) []*Node {
	var out []*Node
	for _, child := range n.children {
		if m(child) {
			out = append(out, child)
		}
		out = append(out, child.FindAll(m)...)
	}
	return out
}

// FindChildren returns direct children matching m.
func (n *Node) FindChildren(m Matcher) []*Node {
	var out []*Node
	for _, child := range n.children {
		if m(child) {
			out = append(out, child)
		}
	}
	return out
}

// Closest returns n or its nearest ancestor matching m.
func (n *Node) Closest(m Matcher) *Node {
	for current := n; current != nil; current = current.parent {
		if m(current) {
			return current
		}
	}
	return nil
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for current := other; current != nil; current = current.parent {
		if current == n {
			return true
		}
	}
	return false
}
