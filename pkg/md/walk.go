package md

// WalkStatus controls how Walk proceeds after visiting a node.
type WalkStatus int

const (
	// WalkContinue continues the traversal.
	WalkContinue WalkStatus = iota
	// WalkSkipChildren skips the children of the node just entered.
	WalkSkipChildren
	// WalkStop stops the traversal.
	WalkStop
)

// Walk traverses the tree rooted at n depth-first, calling f when entering
// and exiting each node. The return value of f when exiting a node is only
// consulted for WalkStop.
//
// The callback may modify the tree, but must not unlink the next sibling of
// the node it is called with.
func Walk(n *Node, f func(n *Node, entering bool) WalkStatus) WalkStatus {
	switch f(n, true) {
	case WalkStop:
		return WalkStop
	case WalkSkipChildren:
	default:
		for c := n.firstChild; c != nil; {
			next := c.next
			if Walk(c, f) == WalkStop {
				return WalkStop
			}
			c = next
		}
	}
	if f(n, false) == WalkStop {
		return WalkStop
	}
	return WalkContinue
}

// Visitor visits nodes.
type Visitor interface {
	Visit(n *Node)
}

// VisitChildren calls v.Visit on each child of n in order. It is safe for the
// visitor to unlink the child it is visiting.
func VisitChildren(v Visitor, n *Node) {
	for c := n.firstChild; c != nil; {
		next := c.next
		v.Visit(c)
		c = next
	}
}
