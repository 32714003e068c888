package ui

const (
	// AttrHidden marks a node hidden by a visibility rule.
	AttrHidden = "data-hidden"
	// AttrTransition records the last fade applied to a node.
	AttrTransition = "data-transition"

	TransitionFadeIn  = "fade-in"
	TransitionFadeOut = "fade-out"
)

// SetHidden hides or shows n without removing it from the tree. When fade is
// true and the state actually changes, the transition marker is updated so a
// stylesheet can animate the toggle.
func (n *Node) SetHidden(hidden, fade bool) {
	changed := n.Hidden() != hidden
	if hidden {
		n.SetAttr("style", "display:none")
		n.SetAttr(AttrHidden, "true")
	} else {
		n.RemoveAttr("style")
		n.RemoveAttr(AttrHidden)
	}
	if !fade || !changed {
		return
	}
	if hidden {
		n.SetAttr(AttrTransition, TransitionFadeOut)
	} else {
		n.SetAttr(AttrTransition, TransitionFadeIn)
	}
}

// Hidden reports whether n carries the hidden marker.
func (n *Node) Hidden() bool {
	return n.AttrValue(AttrHidden) == "true"
}
