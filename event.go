package fire

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/hupe1980/fire/store"
)

// ErrEventBound is returned when binding a second reader or writer to an
// Event that already has one.
var ErrEventBound = errors.New("fire: event already bound")

// Event is a named collection of values that are saved or loaded together,
// one entry at a time, by a File.
//
// An Event may be bound to at most one reading File (its input) and one
// writing File at the same time. It is not safe for concurrent use.
type Event struct {
	names    []string
	bindings map[string]*binding
	cur      *cursorMap

	input     *store.Store
	hasOutput bool
	reserved  map[string]int
	entry     int64
}

type binding struct {
	col   Column
	value any // *T
	typ   string
	// fromInput marks values created by Get from the input file; only
	// those are reloaded when the reader advances.
	fromInput bool
}

// NewEvent creates an empty Event.
func NewEvent() *Event {
	return &Event{
		bindings: make(map[string]*binding),
		cur:      newCursorMap(),
		reserved: make(map[string]int),
		entry:    -1,
	}
}

// Names returns the registered names in insertion order.
func (e *Event) Names() []string {
	return slices.Clone(e.names)
}

// Has reports whether name is registered.
func (e *Event) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Column returns the root column registered under name.
func (e *Event) Column(name string) (Column, bool) {
	b, ok := e.bindings[name]
	if !ok {
		return nil, false
	}
	return b.col, true
}

// Entry returns the current input entry, or -1 before the first.
func (e *Event) Entry() int64 { return e.entry }

// Clear releases all owned values and forgets every name.
func (e *Event) Clear() {
	for _, name := range e.names {
		e.bindings[name].col.Release()
	}
	e.names = nil
	clear(e.bindings)
}

func (e *Event) checkName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return &SchemaError{Path: name, Reason: "name must be non-empty and must not contain '/'"}
	}
	if e.reserved[name] > 0 {
		return &SchemaError{Path: name, Reason: "name is reserved for the entry index"}
	}
	return nil
}

func register[T any](e *Event, name string, fromInput bool) (*binding, error) {
	v := new(T)
	col, err := newColumn(name, v, Owned, e.cur)
	if err != nil {
		return nil, err
	}
	return &binding{col: col, value: v, typ: typeName[T](), fromInput: fromInput}, nil
}

func (e *Event) insert(name string, b *binding) {
	e.bindings[name] = b
	e.names = append(e.names, name)
}

// Add sets the value registered under name, registering it with the
// shape of T on first use. No I/O happens until the next File.Next.
func Add[T any](e *Event, name string, v T) error {
	b, ok := e.bindings[name]
	if !ok {
		if err := e.checkName(name); err != nil {
			return err
		}
		nb, err := register[T](e, name, false)
		if err != nil {
			return err
		}
		e.insert(name, nb)
		b = nb
	}
	p, ok := b.value.(*T)
	if !ok {
		return &TypeMismatchError{Name: name, Bound: b.typ, Requested: typeName[T]()}
	}
	*p = v
	return nil
}

// Get returns a pointer to the value registered under name. An unknown
// name is loaded from the input file at the current entry; without an
// input file, or before the first File.Next, it fails with a
// NotFoundError wrapping ErrMissingData.
//
// The pointer stays valid for the lifetime of the Event and reflects
// every later load.
func Get[T any](e *Event, name string) (*T, error) {
	if b, ok := e.bindings[name]; ok {
		p, ok := b.value.(*T)
		if !ok {
			return nil, &TypeMismatchError{Name: name, Bound: b.typ, Requested: typeName[T]()}
		}
		return p, nil
	}

	if err := e.checkName(name); err != nil {
		return nil, err
	}
	if e.input == nil || e.entry < 0 {
		return nil, &NotFoundError{Path: name, Entry: e.entry, cause: ErrMissingData}
	}

	b, err := register[T](e, name, true)
	if err != nil {
		return nil, err
	}
	if err := b.col.Load(e.input, uint64(e.entry)); err != nil {
		err = translateError("load", name, err)
		var nfe *NotFoundError
		if errors.As(err, &nfe) && nfe.Entry < 0 {
			nfe.Entry = e.entry
		}
		return nil, err
	}
	e.insert(name, b)
	return b.value.(*T), nil
}

// save writes every registered value at row.
func (e *Event) save(s *store.Store, row uint64) error {
	for _, name := range e.names {
		if err := e.bindings[name].col.Save(s, row); err != nil {
			return translateError("save", name, err)
		}
	}
	return nil
}

// load reloads every value that came from the input at row and makes it
// the current entry.
func (e *Event) load(row uint64) error {
	for _, name := range e.names {
		b := e.bindings[name]
		if !b.fromInput {
			continue
		}
		if err := b.col.Load(e.input, row); err != nil {
			err = translateError("load", name, err)
			var nfe *NotFoundError
			if errors.As(err, &nfe) && nfe.Entry < 0 {
				nfe.Entry = int64(row) //nolint:gosec
			}
			return err
		}
	}
	e.entry = int64(row) //nolint:gosec
	return nil
}

func (e *Event) reserve(indexPath string) error {
	if _, taken := e.bindings[indexPath]; taken {
		return &SchemaError{Path: indexPath, Reason: "entry index path collides with a registered name"}
	}
	e.reserved[indexPath]++
	return nil
}

func (e *Event) unreserve(indexPath string) {
	if e.reserved[indexPath]--; e.reserved[indexPath] <= 0 {
		delete(e.reserved, indexPath)
	}
}

func (e *Event) bindInput(s *store.Store, indexPath string) error {
	if e.input != nil {
		return fmt.Errorf("%w: input already attached", ErrEventBound)
	}
	if err := e.reserve(indexPath); err != nil {
		return err
	}
	e.input = s
	e.entry = -1
	return nil
}

func (e *Event) unbindInput(indexPath string) {
	e.input = nil
	e.unreserve(indexPath)
}

// bindOutput starts a write session. Vector cursors restart at zero.
func (e *Event) bindOutput(indexPath string) error {
	if e.hasOutput {
		return fmt.Errorf("%w: output already attached", ErrEventBound)
	}
	if err := e.reserve(indexPath); err != nil {
		return err
	}
	e.hasOutput = true
	e.cur.reset()
	return nil
}

func (e *Event) unbindOutput(indexPath string) {
	e.hasOutput = false
	e.unreserve(indexPath)
}
