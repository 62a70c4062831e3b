package navkit

// RouteDefinition binds a URL path template to the id of a registered
// handler.  Definitions are created during registration and are immutable
// afterward.
type RouteDefinition struct {
	Pattern string         // path template, may contain /:name placeholders
	Target  string         // id of the handler to dispatch to
	Options map[string]any // free-form options made available to the handler

	pat pattern // parsed form of Pattern, set during registration
}

// RouteTable is an ordered sequence of route definitions.  Order matters:
// dispatch is first-match-wins in registration order.  The table is
// append-only during startup and read-only afterward.
type RouteTable struct {
	defs []RouteDefinition
}

// Len returns the number of registered definitions.
func (t *RouteTable) Len() int {
	return len(t.defs)
}

// Definitions returns a copy of the registered definitions in order.
func (t *RouteTable) Definitions() []RouteDefinition {
	ret := make([]RouteDefinition, len(t.defs))
	copy(ret, t.defs)
	return ret
}

func (t *RouteTable) append(def RouteDefinition) {
	t.defs = append(t.defs, def)
}
