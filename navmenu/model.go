// Package navmenu holds the navigation menu state and renders it.  The
// model is a plain observable entry list and the view is template-driven;
// neither participates in URL dispatch.
package navmenu

// Entry describes a single navigation menu item.
type Entry struct {
	ID    string // stable identifier, also the route target id by convention
	Path  string // href the menu item points at
	Title string // text shown in the menu
}

// DefaultEntries returns the standard account menu.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "index", Path: "/", Title: "Home"},
		{ID: "signin", Path: "/signin", Title: "Sign in"},
		{ID: "signup", Path: "/signup", Title: "Sign up"},
		{ID: "signout", Path: "/signout", Title: "Sign out"},
	}
}

// Model holds an ordered list of navigation entries and notifies
// subscribers when the list is replaced.  Entries are replaced wholesale
// via SetEntries, never mutated field-by-field.
type Model struct {
	entries []Entry

	subs   map[int]func([]Entry)
	nextID int
}

// NewModel returns a Model holding the given entries.
func NewModel(entries []Entry) *Model {
	m := &Model{subs: make(map[int]func([]Entry))}
	m.entries = append(m.entries, entries...)
	return m
}

// Entries returns a copy of the current entry list.
func (m *Model) Entries() []Entry {
	ret := make([]Entry, len(m.entries))
	copy(ret, m.entries)
	return ret
}

// SetEntries replaces the entry list and fires exactly one change
// notification per subscriber.
func (m *Model) SetEntries(entries []Entry) {
	m.entries = make([]Entry, len(entries))
	copy(m.entries, entries)
	for _, fn := range m.subs {
		fn(m.Entries())
	}
}

// OnChange registers fn to be called whenever the entry list is replaced.
// The returned function unsubscribes it.
func (m *Model) OnChange(fn func([]Entry)) (unsubscribe func()) {
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		delete(m.subs, id)
	}
}
