package fire

import (
	"fmt"

	"github.com/hupe1980/fire/store"
)

// Ownership records whether a column allocated its value or borrows a
// field of a parent value.
type Ownership uint8

const (
	// Owned columns allocate their value and zero it on Release.
	Owned Ownership = iota
	// Borrowed columns point into a value owned by a parent column.
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}

// Column binds an in-memory value to one or more physical columns of a
// store and moves it to and from a given row.
type Column interface {
	// Path returns the slash-delimited address of the column.
	Path() string
	// Ownership reports whether the column owns its value.
	Ownership() Ownership
	// Load overwrites the in-memory value with the one stored at row.
	Load(s *store.Store, row uint64) error
	// Save writes the in-memory value at row.
	Save(s *store.Store, row uint64) error
	// Release zeroes an owned value. It is a no-op for borrowed columns.
	Release()
}

// cursorMap holds the next free element offset of every vector path
// for one write session.
type cursorMap struct {
	next map[string]uint64
}

func newCursorMap() *cursorMap {
	return &cursorMap{next: make(map[string]uint64)}
}

func (c *cursorMap) get(path string) uint64 { return c.next[path] }

func (c *cursorMap) set(path string, v uint64) { c.next[path] = v }

func (c *cursorMap) reset() { clear(c.next) }

// newColumn builds the column for the static type T, bound to ptr.
func newColumn[T any](path string, ptr *T, own Ownership, cur *cursorMap) (Column, error) {
	switch p := any(ptr).(type) {
	case *bool:
		return newAtomicColumn(path, p, own), nil
	case *int8:
		return newAtomicColumn(path, p, own), nil
	case *int16:
		return newAtomicColumn(path, p, own), nil
	case *int32:
		return newAtomicColumn(path, p, own), nil
	case *int64:
		return newAtomicColumn(path, p, own), nil
	case *uint8:
		return newAtomicColumn(path, p, own), nil
	case *uint16:
		return newAtomicColumn(path, p, own), nil
	case *uint32:
		return newAtomicColumn(path, p, own), nil
	case *uint64:
		return newAtomicColumn(path, p, own), nil
	case *float32:
		return newAtomicColumn(path, p, own), nil
	case *float64:
		return newAtomicColumn(path, p, own), nil
	case *string:
		return newAtomicColumn(path, p, own), nil
	case *int:
		return newWideColumn[int, int64](path, p, own), nil
	case *uint:
		return newWideColumn[uint, uint64](path, p, own), nil

	case *[]bool:
		return newVectorColumn(path, p, own, cur)
	case *[]int8:
		return newVectorColumn(path, p, own, cur)
	case *[]int16:
		return newVectorColumn(path, p, own, cur)
	case *[]int32:
		return newVectorColumn(path, p, own, cur)
	case *[]int64:
		return newVectorColumn(path, p, own, cur)
	case *[]int:
		return newVectorColumn(path, p, own, cur)
	case *[]uint8:
		return newVectorColumn(path, p, own, cur)
	case *[]uint16:
		return newVectorColumn(path, p, own, cur)
	case *[]uint32:
		return newVectorColumn(path, p, own, cur)
	case *[]uint64:
		return newVectorColumn(path, p, own, cur)
	case *[]uint:
		return newVectorColumn(path, p, own, cur)
	case *[]float32:
		return newVectorColumn(path, p, own, cur)
	case *[]float64:
		return newVectorColumn(path, p, own, cur)
	case *[]string:
		return newVectorColumn(path, p, own, cur)

	case vectorShape:
		return p.vectorColumn(path, own, cur)
	case Describer:
		var zero T
		if _, byValue := any(zero).(Describer); byValue {
			return nil, &SchemaError{Path: path, Reason: typeName[T]() + " implements Describe on a value receiver"}
		}
		return newCompositeColumn(path, ptr, p, own, cur)
	}
	return nil, &SchemaError{Path: path, Reason: "unsupported type " + typeName[T]()}
}

// typeName returns a printable name for T.
func typeName[T any]() string {
	return fmt.Sprintf("%T", (*T)(nil))[1:]
}
