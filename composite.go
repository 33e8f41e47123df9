package fire

import (
	"strings"

	"github.com/hupe1980/fire/store"
)

// Describer is implemented by user types that are stored field by field.
// Describe attaches every persisted field to the schema, in order:
//
//	func (h *Hit) Describe(s *fire.Schema) {
//	    fire.Attach(s, "x", &h.X)
//	    fire.Attach(s, "energy", &h.Energy)
//	}
//
// Describe must use a pointer receiver. With a value receiver it would
// attach the fields of a copy and every load and save would be lost, so
// such types are rejected with a SchemaError.
type Describer interface {
	Describe(s *Schema)
}

// Schema collects the child columns of a composite value. The first
// error is kept and reported when the composite column is built.
type Schema struct {
	path     string
	cur      *cursorMap
	children []Column
	names    map[string]struct{}
	err      error
}

// Path returns the path of the composite being described.
func (s *Schema) Path() string { return s.path }

// Err returns the first error encountered while describing.
func (s *Schema) Err() error { return s.err }

func (s *Schema) child(name string) (string, bool) {
	if s.err != nil {
		return "", false
	}
	path := s.path + "/" + name
	if name == "" || strings.Contains(name, "/") {
		s.err = &SchemaError{Path: path, Reason: "field name must be non-empty and must not contain '/'"}
		return "", false
	}
	if _, dup := s.names[name]; dup {
		s.err = &SchemaError{Path: path, Reason: "duplicate field name"}
		return "", false
	}
	s.names[name] = struct{}{}
	return path, true
}

// Attach adds a child column for field under name. The column shape
// follows the static type of the field.
func Attach[T any](s *Schema, name string, field *T) {
	path, ok := s.child(name)
	if !ok {
		return
	}
	col, err := newColumn(path, field, Borrowed, s.cur)
	if err != nil {
		s.err = err
		return
	}
	s.children = append(s.children, col)
}

// AttachSlice adds a variable-length child column for a slice field.
func AttachSlice[E any](s *Schema, name string, field *[]E) {
	path, ok := s.child(name)
	if !ok {
		return
	}
	col, err := newVectorColumn(path, field, Borrowed, s.cur)
	if err != nil {
		s.err = err
		return
	}
	s.children = append(s.children, col)
}

// CompositeColumn binds a Describer to the columns of its fields.
type CompositeColumn[T any] struct {
	path     string
	own      Ownership
	v        *T
	children []Column
}

func newCompositeColumn[T any](path string, ptr *T, d Describer, own Ownership, cur *cursorMap) (Column, error) {
	s := &Schema{path: path, cur: cur, names: make(map[string]struct{})}
	d.Describe(s)
	if s.err != nil {
		return nil, s.err
	}
	return &CompositeColumn[T]{path: path, own: own, v: ptr, children: s.children}, nil
}

func (c *CompositeColumn[T]) Path() string         { return c.path }
func (c *CompositeColumn[T]) Ownership() Ownership { return c.own }

// Value returns a pointer to the bound value.
func (c *CompositeColumn[T]) Value() *T { return c.v }

// Children returns the field columns in attach order.
func (c *CompositeColumn[T]) Children() []Column { return c.children }

func (c *CompositeColumn[T]) Load(s *store.Store, row uint64) error {
	for _, ch := range c.children {
		if err := ch.Load(s, row); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompositeColumn[T]) Save(s *store.Store, row uint64) error {
	for _, ch := range c.children {
		if err := ch.Save(s, row); err != nil {
			return err
		}
	}
	return nil
}

func (c *CompositeColumn[T]) Release() {
	if c.own == Owned {
		var zero T
		*c.v = zero
	}
}
