package navkit

import "net/url"

// NavigatorOpt is a marker interface to ensure that options to Navigator are passed intentionally.
type NavigatorOpt interface {
	IsNavigatorOpt()
}

type intNavigatorOpt int

// IsNavigatorOpt implements NavigatorOpt.
func (i intNavigatorOpt) IsNavigatorOpt() {}

var (
	// NavReplace will cause this navigation to replace the
	// current history entry rather than pushing to the stack.
	// Implemented using window.history.replaceState()
	NavReplace NavigatorOpt = intNavigatorOpt(1)

	// NavSilent will cause this navigation to only update the
	// address bar.  No route handler is dispatched; use it when the
	// URL must reflect state changes already applied by other means.
	NavSilent NavigatorOpt = intNavigatorOpt(2)
)

type navOpts []NavigatorOpt

func (no navOpts) has(o NavigatorOpt) bool {
	for _, o2 := range no {
		if o == o2 {
			return true
		}
	}
	return false
}

// Navigator is implemented by anything that can move the application to a
// new path.  *Router implements it.
type Navigator interface {
	Navigate(path string, query url.Values, opts ...NavigatorOpt) error
}

// NavigatorRef supports injection of a Navigator during component creation.
type NavigatorRef struct {
	Navigator // embed Navigator
}

// NavigatorSet implements NavigatorSetter.
func (h *NavigatorRef) NavigatorSet(o Navigator) {
	h.Navigator = o
}

// NavigatorSetter is implemented by things which can have a Navigator injected.
type NavigatorSetter interface {
	NavigatorSet(Navigator)
}
