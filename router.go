// Package navkit provides client-side URL routing and navigation state for
// Go web applications.  A Router owns an ordered route table and an
// explicitly injected History instance; URL changes are dispatched to
// handlers registered by target id, first match in registration order wins.
package navkit

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/rs/zerolog"
)

// EventEnv is our view of the host UI environment's render lock.
type EventEnv interface {
	Lock()         // acquire write lock
	UnlockOnly()   // release write lock
	UnlockRender() // release write lock and request re-render
}

// New returns a new Router using the given event environment and history
// instance.  Either may be nil: with a nil env handler calls are not
// wrapped in a render lock, with a nil history all address-bar operations
// are no-ops.
func New(eventEnv EventEnv, hist *History) *Router {
	return &Router{
		eventEnv: eventEnv,
		hist:     hist,
		handlers: make(map[string]RouteHandler),
		log:      zerolog.Nop(),
	}
}

// Router translates URL paths into dispatches to registered handlers and
// pushes new URL state.  It has two states: unstarted and listening; the
// transition happens once, in StartHistory, and is one-way.
type Router struct {
	eventEnv EventEnv
	hist     *History
	log      zerolog.Logger

	table      RouteTable
	handlers   map[string]RouteHandler
	notFound   RouteHandler
	registered bool
	listening  bool
}

// SetLogger assigns a logger used for debug-level dispatch tracing.
// The default logger discards everything.
func (r *Router) SetLogger(l zerolog.Logger) {
	r.log = l
}

// Table returns the router's route table.
func (r *Router) Table() *RouteTable {
	return &r.table
}

// Handle registers the handler that the given target id resolves to.
// Routes may only be matched against target ids registered here.
func (r *Router) Handle(target string, h RouteHandler) {
	r.handlers[target] = h
}

// HandleFunc is like Handle but accepts a plain function.
func (r *Router) HandleFunc(target string, f func(rm *RouteMatch)) {
	r.Handle(target, RouteHandlerFunc(f))
}

// SetNotFound assigns the handler invoked when no route matches.
func (r *Router) SetNotFound(h RouteHandler) {
	r.notFound = h
}

// MustMatch is like Match but panics upon error.
func (r *Router) MustMatch(pattern, target string, options map[string]any) {
	err := r.Match(pattern, target, options)
	if err != nil {
		panic(err)
	}
}

// Match appends a route definition binding pattern to the handler
// registered under target.  The pattern must parse and the target must
// already be registered with Handle, otherwise an error is returned and
// the table is unchanged.
func (r *Router) Match(pattern, target string, options map[string]any) error {

	pat, err := parsePattern(pattern)
	if err != nil {
		return fmt.Errorf("route pattern %q: %w", pattern, err)
	}

	if _, ok := r.handlers[target]; !ok {
		return fmt.Errorf("route pattern %q: no handler for target %q", pattern, target)
	}

	r.table.append(RouteDefinition{
		Pattern: pattern,
		Target:  target,
		Options: options,
		pat:     pat,
	})

	r.log.Debug().Str("pattern", pattern).Str("target", target).Msg("route registered")

	return nil
}

// RegisterRoutes appends the given definitions to the table in order.
// It validates every definition before appending any.  Calling it again
// after a successful call, or after StartHistory, is a silent no-op.
func (r *Router) RegisterRoutes(defs []RouteDefinition) error {

	if r.registered || r.listening {
		return nil
	}

	for i := range defs {
		pat, err := parsePattern(defs[i].Pattern)
		if err != nil {
			return fmt.Errorf("route pattern %q: %w", defs[i].Pattern, err)
		}
		if _, ok := r.handlers[defs[i].Target]; !ok {
			return fmt.Errorf("route pattern %q: no handler for target %q", defs[i].Pattern, defs[i].Target)
		}
		defs[i].pat = pat
	}

	for _, def := range defs {
		r.table.append(def)
	}
	r.registered = true

	return nil
}

// StartHistory transitions the router from unstarted to listening:
// future back/forward navigation events dispatch through the route table.
// It does not dispatch the current URL; callers wanting that should follow
// up with Pull.  A second call returns an error.
func (r *Router) StartHistory() error {

	if r.listening {
		return errors.New("history already started")
	}
	if r.hist == nil {
		return errors.New("router has no history instance")
	}

	err := r.hist.Listen(r.onPopState)
	if err != nil {
		return err
	}

	r.listening = true
	return nil
}

// Listening reports whether StartHistory has completed.
func (r *Router) Listening() bool {
	return r.listening
}

func (r *Router) onPopState() {
	u, err := r.hist.Location()
	if err != nil {
		r.log.Debug().Err(err).Msg("popstate: cannot read location")
		return
	}
	r.dispatch(NormalizePath(u.Path), u.Query(), false)
}

// Pull reads the current browser URL and dispatches it.  Generally called
// once at application startup.  Only works in a js environment, otherwise
// returns an error and dispatches nothing.
func (r *Router) Pull() error {

	if r.hist == nil {
		return errors.New("router has no history instance")
	}

	u, err := r.hist.Location()
	if err != nil {
		return err
	}

	r.dispatch(NormalizePath(u.Path), u.Query(), false)
	return nil
}

// Route is the manual dispatch entry point.  The path is normalized
// (leading "#!", "#" and missing "/" prefixes) and scanned against the
// table in registration order; the first match pushes the normalized URL
// into history and invokes the target's handler with ChangeURL set.
// It returns false, invoking no route handler, if nothing matches.
func (r *Router) Route(p string) bool {
	pathPart, rawQuery, _ := strings.Cut(p, "?")
	query, _ := url.ParseQuery(rawQuery)
	return r.dispatch(NormalizePath(pathPart), query, true)
}

// ChangeURL pushes a new URL into history without triggering any route
// handler.  Use it when the URL must reflect state changes already
// applied through other means.
func (r *Router) ChangeURL(u string) {
	if r.hist != nil {
		r.hist.Push(u)
	}
}

// ChangeURLReplace is like ChangeURL but replaces the current history
// entry instead of pushing a new one.
func (r *Router) ChangeURLReplace(u string) {
	if r.hist != nil {
		r.hist.Replace(u)
	}
}

// MustNavigate is like Navigate but panics upon error.
func (r *Router) MustNavigate(path string, query url.Values, opts ...NavigatorOpt) {
	err := r.Navigate(path, query, opts...)
	if err != nil {
		panic(err)
	}
}

// Navigate moves the application to the specified path and query: the
// address bar is updated and, unless NavSilent is given, the matching
// route handler is dispatched.
func (r *Router) Navigate(path string, query url.Values, opts ...NavigatorOpt) error {

	norm := NormalizePath(path)

	pq := norm
	if q := query.Encode(); q != "" {
		pq = pq + "?" + q
	}

	if r.hist != nil {
		if navOpts(opts).has(NavReplace) {
			r.hist.Replace(pq)
		} else {
			r.hist.Push(pq)
		}
	}

	if navOpts(opts).has(NavSilent) {
		return nil
	}

	r.dispatch(norm, query, false)
	return nil
}

// Path builds a concrete path for the first route registered against
// target, interpolating params into the pattern's placeholders.  Params
// not consumed by a placeholder are appended as a query string.
func (r *Router) Path(target string, params url.Values) (string, error) {

	for i := range r.table.defs {
		def := &r.table.defs[i]
		if def.Target != target {
			continue
		}

		outPath, leftover, err := def.pat.build(params)
		if err != nil {
			return "", fmt.Errorf("target %q: %w", target, err)
		}
		if q := leftover.Encode(); q != "" {
			outPath = outPath + "?" + q
		}
		return outPath, nil
	}

	return "", fmt.Errorf("no route for target %q", target)
}

// dispatch scans the table in registration order and invokes the first
// exactly-matching definition's handler.  changeURL true means this
// dispatch should also move the address bar to the matched path.
func (r *Router) dispatch(path string, query url.Values, changeURL bool) bool {

	for i := range r.table.defs {
		def := &r.table.defs[i]

		pvals, exact, ok := def.pat.match(path)
		if !ok || !exact {
			continue
		}

		// merge any other values from query into pvals
		for k, v := range query {
			if pvals == nil {
				pvals = make(url.Values, len(query))
			}
			if pvals[k] == nil {
				pvals[k] = v
			}
		}

		if changeURL && r.hist != nil {
			pq := path
			if q := query.Encode(); q != "" {
				pq = pq + "?" + q
			}
			r.hist.Push(pq)
		}

		r.log.Debug().Str("path", path).Str("pattern", def.Pattern).Str("target", def.Target).Msg("route matched")

		r.invoke(r.handlers[def.Target], &RouteMatch{
			Path:      path,
			RoutePath: def.pat.String(),
			Target:    def.Target,
			Params:    pvals,
			Options:   def.Options,
			ChangeURL: changeURL,
		})

		return true
	}

	r.log.Debug().Str("path", path).Msg("no route matched")

	if r.notFound != nil {
		r.invoke(r.notFound, &RouteMatch{
			Path:   path,
			Params: query,
		})
	}

	return false
}

func (r *Router) invoke(h RouteHandler, rm *RouteMatch) {
	if h == nil {
		return
	}
	if r.eventEnv != nil {
		r.eventEnv.Lock()
		defer r.eventEnv.UnlockRender()
	}
	h.RouteHandle(rm)
}

// NormalizePath canonicalizes a dispatch path: a leading hash-bang or
// hash is stripped and the result is rooted with a single "/".  The
// empty string normalizes to "/".
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "#!")
	p = strings.TrimPrefix(p, "#")
	return path.Clean("/" + p)
}

// RouteHandler implementations are called in response to a route matching
// (being navigated to).
type RouteHandler interface {
	RouteHandle(rm *RouteMatch)
}

// RouteHandlerFunc implements RouteHandler as a function.
type RouteHandlerFunc func(rm *RouteMatch)

// RouteHandle implements the RouteHandler interface.
func (f RouteHandlerFunc) RouteHandle(rm *RouteMatch) { f(rm) }

// RouteMatch describes a dispatch to a route handler.
type RouteMatch struct {
	Path      string         // normalized path that was dispatched
	RoutePath string         // route path template with placeholders as :param
	Target    string         // target id the handler was registered under
	Params    url.Values     // combined query and path placeholder values
	Options   map[string]any // options the route was registered with
	ChangeURL bool           // true when the dispatch moved the address bar
}
