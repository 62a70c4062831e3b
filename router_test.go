package navkit

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recorder collects dispatches per target id.
type recorder struct {
	out map[string][]RouteMatch
}

func newRecorder() *recorder {
	return &recorder{out: make(map[string][]RouteMatch)}
}

func (rec *recorder) handleFunc(target string) func(rm *RouteMatch) {
	return func(rm *RouteMatch) {
		rec.out[target] = append(rec.out[target], *rm)
	}
}

func (rec *recorder) calls() int {
	n := 0
	for _, l := range rec.out {
		n += len(l)
	}
	return n
}

func newTestRouter(rec *recorder, targets ...string) *Router {
	r := New(nil, NewHistory())
	for _, tgt := range targets {
		r.HandleFunc(tgt, rec.handleFunc(tgt))
	}
	return r
}

func TestRouterRoute(t *testing.T) {

	type tcase struct {
		path    string // the path given to Route
		want    bool
		target  string // target id expected to have been dispatched, "" for none
		matched string // expected RouteMatch.Path
	}

	tclist := []tcase{
		{"", true, "index", "/"},
		{"/", true, "index", "/"},
		{"/signin", true, "signin", "/signin"},
		{"/signup", true, "signup", "/signup"},
		{"signup", true, "signup", "/signup"},
		{"#!/signup", true, "signup", "/signup"},
		{"#signout", true, "signout", "/signout"},
		{"/nothing", false, "", ""},
		{"/signupextra", false, "", ""},
	}

	for i, tc := range tclist {
		t.Run(fmt.Sprintf("%d_%s", i, tc.path), func(t *testing.T) {
			assert := assert.New(t)

			rec := newRecorder()
			r := newTestRouter(rec, "index", "signin", "signup", "signout")
			r.MustMatch("", "index", nil)
			r.MustMatch("/signin", "signin", nil)
			r.MustMatch("/signup", "signup", nil)
			r.MustMatch("/signout", "signout", nil)

			got := r.Route(tc.path)
			assert.Equal(tc.want, got)

			if tc.target == "" {
				assert.Zero(rec.calls(), "no handler should have been invoked")
				return
			}

			if assert.Len(rec.out[tc.target], 1) {
				rm := rec.out[tc.target][0]
				assert.Equal(tc.matched, rm.Path)
				assert.Equal(tc.target, rm.Target)
				assert.True(rm.ChangeURL)
			}
			assert.Equal(1, rec.calls(), "exactly one handler should have been invoked")
		})
	}

}

func TestRouterFirstMatchWins(t *testing.T) {

	assert := assert.New(t)

	rec := newRecorder()
	r := newTestRouter(rec, "first", "second")

	// both patterns match /dup; the one registered first wins
	r.MustMatch("/dup", "first", nil)
	r.MustMatch("/dup", "second", nil)

	assert.True(r.Route("/dup"))
	assert.Len(rec.out["first"], 1)
	assert.Len(rec.out["second"], 0)

}

func TestRouterParams(t *testing.T) {

	assert := assert.New(t)

	rec := newRecorder()
	r := newTestRouter(rec, "product")
	r.MustMatch("/product/:id", "product", nil)

	assert.True(r.Route("/product/42?page=2"))
	if assert.Len(rec.out["product"], 1) {
		rm := rec.out["product"][0]
		assert.Equal("42", rm.Params.Get("id"))
		assert.Equal("2", rm.Params.Get("page"))
		assert.Equal("/product/:id", rm.RoutePath)
	}

	// path params win over colliding query params
	assert.True(r.Route("/product/42?id=99"))
	rm := rec.out["product"][1]
	assert.Equal("42", rm.Params.Get("id"))

}

func TestRouterChangeURLNoDispatch(t *testing.T) {

	assert := assert.New(t)

	rec := newRecorder()
	r := newTestRouter(rec, "index", "signup")
	r.MustMatch("", "index", nil)
	r.MustMatch("/signup", "signup", nil)

	r.ChangeURL("/signup")
	r.ChangeURLReplace("/signin")
	assert.Zero(rec.calls(), "ChangeURL must not dispatch")

	err := r.Navigate("/signup", nil, NavSilent)
	assert.NoError(err)
	assert.Zero(rec.calls(), "NavSilent must not dispatch")

	err = r.Navigate("/signup", nil)
	assert.NoError(err)
	assert.Len(rec.out["signup"], 1)
	assert.False(rec.out["signup"][0].ChangeURL)

}

func TestRouterNotFound(t *testing.T) {

	assert := assert.New(t)

	rec := newRecorder()
	r := newTestRouter(rec, "index")
	r.MustMatch("", "index", nil)

	var nf []RouteMatch
	r.SetNotFound(RouteHandlerFunc(func(rm *RouteMatch) {
		nf = append(nf, *rm)
	}))

	assert.False(r.Route("/nothing"))
	if assert.Len(nf, 1) {
		assert.Equal("/nothing", nf[0].Path)
	}
	assert.Zero(rec.calls())

}

func TestRouterMatchErrors(t *testing.T) {

	assert := assert.New(t)

	r := New(nil, nil)

	err := r.Match("/signin", "signin", nil)
	assert.Error(err, "unknown target must be rejected")
	assert.Zero(r.Table().Len(), "failed registration must not grow the table")

	r.HandleFunc("signin", func(*RouteMatch) {})
	assert.NoError(r.Match("/signin", "signin", nil))
	assert.Equal(1, r.Table().Len())

}

func TestRouterRegisterRoutes(t *testing.T) {

	assert := assert.New(t)

	rec := newRecorder()
	r := newTestRouter(rec, "index", "signin")

	defs := []RouteDefinition{
		{Pattern: "", Target: "index"},
		{Pattern: "/signin", Target: "signin", Options: map[string]any{"title": "Sign in"}},
	}

	assert.NoError(r.RegisterRoutes(defs))
	assert.Equal(2, r.Table().Len())

	// second call is a silent no-op
	assert.NoError(r.RegisterRoutes(defs))
	assert.Equal(2, r.Table().Len())

	assert.True(r.Route("/signin"))
	if assert.Len(rec.out["signin"], 1) {
		assert.Equal("Sign in", rec.out["signin"][0].Options["title"])
	}

	// a bad definition rejects the whole batch
	r2 := newTestRouter(newRecorder(), "index")
	err := r2.RegisterRoutes([]RouteDefinition{
		{Pattern: "", Target: "index"},
		{Pattern: "/x", Target: "unknown"},
	})
	assert.Error(err)
	assert.Zero(r2.Table().Len())

}

func TestRouterPath(t *testing.T) {

	assert := assert.New(t)

	r := New(nil, nil)
	r.HandleFunc("product", func(*RouteMatch) {})
	r.MustMatch("/product/:id", "product", nil)

	p, err := r.Path("product", url.Values{"id": {"42"}, "page": {"2"}})
	assert.NoError(err)
	assert.Equal("/product/42?page=2", p)

	_, err = r.Path("missing", nil)
	assert.Error(err)

	_, err = r.Path("product", nil)
	assert.Error(err, "missing placeholder value")

}

// lockEnv records render lock transitions.
type lockEnv struct {
	seq []string
}

func (e *lockEnv) Lock()         { e.seq = append(e.seq, "lock") }
func (e *lockEnv) UnlockOnly()   { e.seq = append(e.seq, "unlock") }
func (e *lockEnv) UnlockRender() { e.seq = append(e.seq, "unlock-render") }

func TestRouterEventEnv(t *testing.T) {

	assert := assert.New(t)

	env := &lockEnv{}
	r := New(env, nil)
	r.HandleFunc("index", func(*RouteMatch) {
		assert.Equal([]string{"lock"}, env.seq, "handler must run inside the lock")
	})
	r.MustMatch("", "index", nil)

	assert.True(r.Route(""))
	assert.Equal([]string{"lock", "unlock-render"}, env.seq)

}

func TestNormalizePath(t *testing.T) {

	tclist := []struct{ in, out string }{
		{"", "/"},
		{"/", "/"},
		{"signup", "/signup"},
		{"/signup", "/signup"},
		{"#!/signup", "/signup"},
		{"#!signup", "/signup"},
		{"#signup", "/signup"},
		{"/a/b/../c", "/a/c"},
	}

	for _, tc := range tclist {
		t.Run(tc.in, func(t *testing.T) {
			if got := NormalizePath(tc.in); got != tc.out {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.out)
			}
		})
	}

}
