package catalog

import (
	"errors"
	"fmt"
	"sort"

	"track-planner/internal/piece"
)

// ErrUnknownPiece is returned when a definition name is not in the library.
var ErrUnknownPiece = errors.New("unknown piece definition")

// Library stores piece definitions by name. Definitions are shared by
// reference with every placed piece and are never mutated after Add.
type Library struct {
	defs  map[string]*piece.Definition
	order []string
}

// NewLibrary creates a library holding defs.
func NewLibrary(defs ...*piece.Definition) *Library {
	lib := &Library{defs: make(map[string]*piece.Definition)}
	for _, d := range defs {
		lib.Add(d)
	}
	return lib
}

// NewStandardLibrary creates a library with the standard definitions.
func NewStandardLibrary(d Dimensions) (*Library, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("standard library: %w", err)
	}
	return NewLibrary(Standard(d)...), nil
}

// Add adds or replaces a definition. Replacing keeps the original position.
func (lib *Library) Add(def *piece.Definition) {
	if _, exists := lib.defs[def.Name]; !exists {
		lib.order = append(lib.order, def.Name)
	}
	lib.defs[def.Name] = def
}

// Get returns the definition with the given name.
func (lib *Library) Get(name string) (*piece.Definition, error) {
	def, ok := lib.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	return def, nil
}

// MustGet is like Get but panics when the name is unknown. It is meant for
// the standard names, which are always present in a standard library.
func (lib *Library) MustGet(name string) *piece.Definition {
	def, err := lib.Get(name)
	if err != nil {
		panic(err)
	}
	return def
}

// Names returns definition names in insertion order.
func (lib *Library) Names() []string {
	return append([]string(nil), lib.order...)
}

// ByKind returns the definitions of one kind, sorted by name.
func (lib *Library) ByKind(kind piece.Kind) []*piece.Definition {
	var out []*piece.Definition
	for _, name := range lib.order {
		if d := lib.defs[name]; d.Kind == kind {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of definitions.
func (lib *Library) Len() int {
	return len(lib.order)
}
