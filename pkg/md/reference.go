package md

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"src.mdkit.sh/pkg/md/mdutil"
)

// Reference is a link reference definition such as [label]: /dest "title".
type Reference struct {
	// Label is the label as written in the source, including the brackets.
	Label       string
	Destination string
	Title       string
	HasTitle    bool
	// Line is the 0-based source line the definition starts on.
	Line int
}

// ReferenceMap maps normalized labels to reference definitions. The first
// definition of a label wins, and definitions are kept in insertion order.
type ReferenceMap struct {
	m          *linkedhashmap.Map
	duplicates []Reference
}

// NewReferenceMap returns an empty ReferenceMap.
func NewReferenceMap() *ReferenceMap {
	return &ReferenceMap{m: linkedhashmap.New()}
}

// Add adds a definition unless its label is already defined or normalizes to
// an empty string. It returns whether the definition was added. Definitions
// rejected because of an earlier one are remembered and returned by
// Duplicates.
func (m *ReferenceMap) Add(ref Reference) bool {
	key := mdutil.NormalizeLabel(ref.Label)
	if key == "" {
		return false
	}
	if _, ok := m.m.Get(key); ok {
		m.duplicates = append(m.duplicates, ref)
		return false
	}
	m.m.Put(key, ref)
	return true
}

// Get looks up a label. The label is normalized first, so it may be given
// with or without the surrounding brackets.
func (m *ReferenceMap) Get(label string) (Reference, bool) {
	v, ok := m.m.Get(mdutil.NormalizeLabel(label))
	if !ok {
		return Reference{}, false
	}
	return v.(Reference), true
}

// Len returns the number of definitions.
func (m *ReferenceMap) Len() int { return m.m.Size() }

// All returns all definitions in the order they were added.
func (m *ReferenceMap) All() []Reference {
	refs := make([]Reference, 0, m.m.Size())
	it := m.m.Iterator()
	for it.Next() {
		refs = append(refs, it.Value().(Reference))
	}
	return refs
}

// Duplicates returns the definitions that were not added because their label
// was already defined.
func (m *ReferenceMap) Duplicates() []Reference { return m.duplicates }
