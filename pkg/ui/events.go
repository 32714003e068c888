package ui

// Event types dispatched by controls.
const (
	EventInput  = "input"
	EventChange = "change"
	EventClick  = "click"
)

// Event travels from its target up through every ancestor.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener handles a dispatched event.
type Listener func(*Event)

// On registers fn for events of eventType reaching n.
func (n *Node) On(eventType string, fn Listener) *Node {
	if fn == nil || eventType == "" {
		return n
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]Listener)
	}
	n.listeners[eventType] = append(n.listeners[eventType], fn)
	return n
}

// Off removes every listener for eventType.
func (n *Node) Off(eventType string) {
	delete(n.listeners, eventType)
}

// HasListeners reports whether any listener for eventType is attached to n.
func (n *Node) HasListeners(eventType string) bool {
	return len(n.listeners[eventType]) > 0
}

// Dispatch fires eventType at n and bubbles it to the root. Listeners run
// synchronously, so every side effect is complete when Dispatch returns.
func (n *Node) Dispatch(eventType string) *Event {
	event := &Event{Type: eventType, Target: n}
	for current := n; current != nil && !event.stopped; current = current.parent {
		listeners := current.listeners[eventType]
		if len(listeners) == 0 {
			continue
		}
		event.CurrentTarget = current
		for _, fn := range append([]Listener(nil), listeners...) {
			fn(event)
		}
	}
	return event
}

// Input sets the live value and fires an input event.
func (n *Node) Input(value string) {
	n.Value = value
	n.Dispatch(EventInput)
}

// Change sets the live value and fires a change event.
func (n *Node) Change(value string) {
	n.Value = value
	n.Dispatch(EventChange)
}

// Check toggles a checkbox or radio control and fires a change event. Checking
// a radio clears the other radios sharing its name within the same parent
// subtree.
func (n *Node) Check(checked bool) {
	if checked && n.AttrValue("type") == "radio" {
		if group := n.radioScope(); group != nil {
			name := n.AttrValue("name")
			for _, peer := range group.FindAll(ByAttrValue("type", "radio")) {
				if peer != n && peer.AttrValue("name") == name {
					peer.Checked = false
				}
			}
		}
	}
	n.Checked = checked
	n.Dispatch(EventChange)
}

// Select marks the options of a select control whose value is in values and
// fires a change event.
func (n *Node) Select(values ...string) {
	for _, option := range n.FindAll(ByTag("option")) {
		option.Selected = containsString(values, option.AttrValue("value"))
	}
	if len(values) > 0 {
		n.Value = values[0]
	} else {
		n.Value = ""
	}
	n.Dispatch(EventChange)
}

// Click fires a click event.
func (n *Node) Click() {
	n.Dispatch(EventClick)
}

func (n *Node) radioScope() *Node {
	scope := n.parent
	for scope != nil && scope.parent != nil && !scope.HasAttr("data-field-control") {
		scope = scope.parent
	}
	return scope
}
