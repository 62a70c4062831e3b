package navmenu

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/vugu/vugu/js"
)

const defaultTemplateText = `<ul class="nav">
{{- range .Entries}}
<li{{if .Active}} class="active"{{end}}><a href="{{.Path}}">{{.Title}}</a></li>
{{- end}}
</ul>`

var defaultTemplate = template.Must(template.New("navmenu").Parse(defaultTemplateText))

// View renders a Model's entries as an unordered list of links.
type View struct {
	model      *Model
	tmpl       *template.Template
	activePath string

	elementID string
	unsub     func()
}

// NewView returns a View bound to the given model, rendering with the
// default template.
func NewView(m *Model) *View {
	return &View{
		model: m,
		tmpl:  defaultTemplate,
	}
}

// SetTemplate replaces the view's template.  The template is executed
// with {Entries: [{ID Path Title Active}...]}.
func (v *View) SetTemplate(t *template.Template) {
	v.tmpl = t
}

// SetActivePath marks the entry whose Path equals p as active.  If the
// view is mounted it re-renders.
func (v *View) SetActivePath(p string) {
	v.activePath = p
	if v.elementID != "" {
		v.refresh()
	}
}

type viewEntry struct {
	Entry
	Active bool
}

type viewData struct {
	Entries []viewEntry
}

// Render writes the menu markup to w.
func (v *View) Render(w io.Writer) error {

	entries := v.model.Entries()
	data := viewData{Entries: make([]viewEntry, 0, len(entries))}
	for _, e := range entries {
		data.Entries = append(data.Entries, viewEntry{
			Entry:  e,
			Active: e.Path == v.activePath,
		})
	}

	return v.tmpl.Execute(w, data)
}

// Mount renders the menu into the innerHTML of the DOM element with the
// given id and subscribes to the model so every entry change re-renders.
// Only works in a js environment.
func (v *View) Mount(elementID string) error {

	g := js.Global()
	if !g.Truthy() {
		return fmt.Errorf("not in browser (js) environment")
	}

	el := g.Get("document").Call("getElementById", elementID)
	if !el.Truthy() {
		return fmt.Errorf("no element with id %q", elementID)
	}

	v.elementID = elementID
	v.unsub = v.model.OnChange(func([]Entry) {
		v.refresh()
	})

	return v.refresh()
}

// Unmount stops re-rendering on model changes.  The rendered markup is
// left in place.
func (v *View) Unmount() {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
	v.elementID = ""
}

func (v *View) refresh() error {

	var buf bytes.Buffer
	if err := v.Render(&buf); err != nil {
		return err
	}

	g := js.Global()
	if !g.Truthy() {
		return fmt.Errorf("not in browser (js) environment")
	}
	el := g.Get("document").Call("getElementById", v.elementID)
	if !el.Truthy() {
		return fmt.Errorf("no element with id %q", v.elementID)
	}
	el.Set("innerHTML", buf.String())

	return nil
}
