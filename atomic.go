package fire

import (
	"github.com/hupe1980/fire/store"
)

// AtomicColumn binds one scalar value to one physical column.
type AtomicColumn[T store.Scalar] struct {
	path string
	own  Ownership
	v    *T
}

func newAtomicColumn[T store.Scalar](path string, ptr *T, own Ownership) *AtomicColumn[T] {
	return &AtomicColumn[T]{path: path, own: own, v: ptr}
}

func (c *AtomicColumn[T]) Path() string         { return c.path }
func (c *AtomicColumn[T]) Ownership() Ownership { return c.own }

// Value returns the current in-memory value.
func (c *AtomicColumn[T]) Value() T { return *c.v }

// Update overwrites the in-memory value.
func (c *AtomicColumn[T]) Update(v T) { *c.v = v }

func (c *AtomicColumn[T]) Load(s *store.Store, row uint64) error {
	v, err := store.Read[T](s, c.path, row)
	if err != nil {
		return err
	}
	*c.v = v
	return nil
}

func (c *AtomicColumn[T]) Save(s *store.Store, row uint64) error {
	return store.Write(s, c.path, row, *c.v)
}

func (c *AtomicColumn[T]) Release() {
	if c.own == Owned {
		var zero T
		*c.v = zero
	}
}

// wideColumn stores a platform-sized integer as its 64-bit counterpart.
type wideColumn[T int | uint, S int64 | uint64] struct {
	path string
	own  Ownership
	v    *T
}

func newWideColumn[T int | uint, S int64 | uint64](path string, ptr *T, own Ownership) *wideColumn[T, S] {
	return &wideColumn[T, S]{path: path, own: own, v: ptr}
}

func (c *wideColumn[T, S]) Path() string         { return c.path }
func (c *wideColumn[T, S]) Ownership() Ownership { return c.own }

func (c *wideColumn[T, S]) Load(s *store.Store, row uint64) error {
	v, err := store.Read[S](s, c.path, row)
	if err != nil {
		return err
	}
	*c.v = T(v)
	return nil
}

func (c *wideColumn[T, S]) Save(s *store.Store, row uint64) error {
	return store.Write(s, c.path, row, S(*c.v))
}

func (c *wideColumn[T, S]) Release() {
	if c.own == Owned {
		*c.v = 0
	}
}
