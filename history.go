package navkit

import (
	"errors"
	"net/url"
	"strings"

	"github.com/vugu/vugu/js"
)

// ErrNotBrowser is returned by History methods that need a js environment
// when running outside of one (e.g. during regular Go tests).
var ErrNotBrowser = errors.New("not in browser (js) environment")

// HistoryOpt configures a History instance.
type HistoryOpt func(*History)

// WithFragment makes the History read and write the fragment part of the
// URL (after the "#") instead of the real path.  Useful for applications
// served statically with no server-side URL handling.  Off by default.
func WithFragment() HistoryOpt {
	return func(h *History) {
		h.useFragment = true
	}
}

// History wraps the browser history API (pushState/replaceState/popstate).
// It is constructed explicitly and passed to whatever needs to read or
// write the address bar; there is no package-level shared instance.
type History struct {
	useFragment bool

	popStateFunc js.Func
}

// NewHistory returns a new History.
func NewHistory(opts ...HistoryOpt) *History {
	h := &History{}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Push adds a history entry for the given path-and-query without reloading
// the page and without notifying any listener.  No-op outside a js
// environment.
func (h *History) Push(pathAndQuery string) {

	g := js.Global()
	if g.Truthy() {
		pqv := pathAndQuery
		if h.useFragment {
			pqv = "#" + pathAndQuery
		}
		g.Get("window").Get("history").Call("pushState", nil, "", pqv)
	}

}

// Replace is like Push but replaces the current history entry instead of
// adding a new one.
func (h *History) Replace(pathAndQuery string) {

	g := js.Global()
	if g.Truthy() {
		pqv := pathAndQuery
		if h.useFragment {
			pqv = "#" + pathAndQuery
		}
		g.Get("window").Get("history").Call("replaceState", nil, "", pqv)
	}

}

// Location reads the current browser URL.
// Only works in a js environment, otherwise returns ErrNotBrowser.
func (h *History) Location() (*url.URL, error) {

	g := js.Global()
	if !g.Truthy() {
		return nil, ErrNotBrowser
	}

	var locstr string
	if h.useFragment {
		locstr = strings.TrimPrefix(g.Get("window").Get("location").Get("hash").String(), "#")
	} else {
		locstr = g.Get("window").Get("location").Call("toString").String()
	}

	return url.Parse(locstr)
}

// Listen registers f to be called on each popstate event (back/forward
// navigation).  Only one listener may be registered at a time.
func (h *History) Listen(f func()) error {

	g := js.Global()
	if !g.Truthy() {
		return ErrNotBrowser
	}

	if !h.popStateFunc.IsUndefined() {
		return errors.New("popstate listener already set")
	}

	jf := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		f()
		return nil
	})

	g.Get("window").Call("addEventListener", "popstate", jf)

	h.popStateFunc = jf

	return nil
}

// StopListening removes the popstate listener registered with Listen.
func (h *History) StopListening() error {

	g := js.Global()
	if !g.Truthy() {
		return ErrNotBrowser
	}

	if h.popStateFunc.IsUndefined() {
		return errors.New("popstate listener not set")
	}

	g.Get("window").Call("removeEventListener", "popstate", h.popStateFunc)

	h.popStateFunc.Release()
	h.popStateFunc = js.Func{}

	return nil
}
