package fire

import (
	"fmt"

	"github.com/hupe1980/fire/store"
)

// Vector is a variable-length sequence of E stored in flattened form.
// Use it for nested sequences, e.g. Vector[Vector[float64]], and for
// slices of composite types. Plain scalar slices work without it.
type Vector[E any] []E

// vectorShape is implemented by *Vector[E].
type vectorShape interface {
	vectorColumn(path string, own Ownership, cur *cursorMap) (Column, error)
}

func (v *Vector[E]) vectorColumn(path string, own Ownership, cur *cursorMap) (Column, error) {
	return newVectorColumn(path, (*[]E)(v), own, cur)
}

// VectorColumn binds a []E to a begin/end index pair per row and one
// element column over a flattened offset space.
//
// Row r holds elements [begin[r], end[r]) of path/data. The next free
// offset is tracked in the cursor map shared by the event.
type VectorColumn[E any] struct {
	path      string
	beginPath string
	endPath   string
	own       Ownership
	v         *[]E
	scratch   *E
	elem      Column
	cur       *cursorMap
}

func newVectorColumn[E any](path string, ptr *[]E, own Ownership, cur *cursorMap) (Column, error) {
	scratch := new(E)
	elem, err := newColumn(path+"/data", scratch, Owned, cur)
	if err != nil {
		return nil, err
	}
	return &VectorColumn[E]{
		path:      path,
		beginPath: path + "/begin",
		endPath:   path + "/end",
		own:       own,
		v:         ptr,
		scratch:   scratch,
		elem:      elem,
		cur:       cur,
	}, nil
}

func (c *VectorColumn[E]) Path() string         { return c.path }
func (c *VectorColumn[E]) Ownership() Ownership { return c.own }

// Value returns the current in-memory slice.
func (c *VectorColumn[E]) Value() []E { return *c.v }

// Update overwrites the in-memory slice.
func (c *VectorColumn[E]) Update(v []E) { *c.v = v }

// Element returns the column that stores individual elements.
func (c *VectorColumn[E]) Element() Column { return c.elem }

func (c *VectorColumn[E]) Save(s *store.Store, row uint64) error {
	vals := *c.v
	begin := c.cur.get(c.path)
	end := begin + uint64(len(vals))

	if err := store.Write(s, c.beginPath, row, begin); err != nil {
		return err
	}
	if err := store.Write(s, c.endPath, row, end); err != nil {
		return err
	}
	for k, v := range vals {
		*c.scratch = v
		if err := c.elem.Save(s, begin+uint64(k)); err != nil {
			return err
		}
	}
	c.cur.set(c.path, end)
	return nil
}

func (c *VectorColumn[E]) Load(s *store.Store, row uint64) error {
	begin, err := store.Read[uint64](s, c.beginPath, row)
	if err != nil {
		return err
	}
	end, err := store.Read[uint64](s, c.endPath, row)
	if err != nil {
		return err
	}
	if end < begin {
		return fmt.Errorf("%w: %s row %d has end %d < begin %d", ErrCorrupted, c.path, row, end, begin)
	}

	out := make([]E, end-begin)
	for k := range out {
		var zero E
		*c.scratch = zero
		if err := c.elem.Load(s, begin+uint64(k)); err != nil {
			return err
		}
		out[k] = *c.scratch
	}
	*c.v = out
	return nil
}

func (c *VectorColumn[E]) Release() {
	c.elem.Release()
	if c.own == Owned {
		*c.v = nil
	}
}
