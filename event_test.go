package fire_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/fire"
	"github.com/hupe1980/fire/blobstore"
)

type plain struct {
	A int
}

type dupFields struct {
	A, B int32
}

func (d *dupFields) Describe(s *fire.Schema) {
	fire.Attach(s, "a", &d.A)
	fire.Attach(s, "a", &d.B)
}

type badField struct {
	M map[string]int
}

func (b *badField) Describe(s *fire.Schema) {
	fire.Attach(s, "m", &b.M)
}

type byValue struct {
	A int32
}

func (b byValue) Describe(s *fire.Schema) {
	fire.Attach(s, "a", &b.A)
}

type holdsByValue struct {
	Inner byValue
}

func (h *holdsByValue) Describe(s *fire.Schema) {
	fire.Attach(s, "inner", &h.Inner)
}

func TestEvent_AddGet(t *testing.T) {
	ev := fire.NewEvent()

	require.NoError(t, fire.Add(ev, "x", 1.0))
	x, err := fire.Get[float64](ev, "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, *x)

	require.NoError(t, fire.Add(ev, "x", 2.5))
	assert.Equal(t, 2.5, *x)

	require.NoError(t, fire.Add(ev, "hits", fire.Vector[Hit]{{X: 1}}))
	assert.Equal(t, []string{"x", "hits"}, ev.Names())
	assert.True(t, ev.Has("hits"))
	assert.False(t, ev.Has("y"))
	assert.Equal(t, int64(-1), ev.Entry())

	col, ok := ev.Column("hits")
	require.True(t, ok)
	assert.Equal(t, "hits", col.Path())
	assert.Equal(t, fire.Owned, col.Ownership())
}

func TestEvent_TypeMismatch(t *testing.T) {
	ev := fire.NewEvent()
	require.NoError(t, fire.Add(ev, "x", 1.0))

	_, err := fire.Get[int](ev, "x")
	var tme *fire.TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.Equal(t, "x", tme.Name)
	assert.Equal(t, "float64", tme.Bound)
	assert.Equal(t, "int", tme.Requested)

	require.ErrorAs(t, fire.Add(ev, "x", float32(1)), &tme)

	// The bound value is untouched.
	x, err := fire.Get[float64](ev, "x")
	require.NoError(t, err)
	assert.Equal(t, 1.0, *x)
}

func TestEvent_MissingData(t *testing.T) {
	ev := fire.NewEvent()

	_, err := fire.Get[int32](ev, "nope")
	require.ErrorIs(t, err, fire.ErrNotFound)
	require.ErrorIs(t, err, fire.ErrMissingData)
	assert.False(t, ev.Has("nope"))
}

func TestEvent_GetBeforeFirstEntry(t *testing.T) {
	ctx := context.Background()
	ms := blobstore.NewMemoryStore()

	ev := fire.NewEvent()
	w, err := fire.Create(ctx, "g.fire", ev, fire.WithBlobStore(ms))
	require.NoError(t, err)
	require.NoError(t, fire.Add(ev, "x", int32(9)))
	_, err = w.Next()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ev = fire.NewEvent()
	r, err := fire.Open(ctx, "g.fire", ev, fire.WithBlobStore(ms))
	require.NoError(t, err)
	defer r.Close()

	_, err = fire.Get[int32](ev, "x")
	require.ErrorIs(t, err, fire.ErrMissingData)
	var nfe *fire.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, int64(-1), nfe.Entry)
	assert.False(t, ev.Has("x"))

	ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	x, err := fire.Get[int32](ev, "x")
	require.NoError(t, err)
	assert.Equal(t, int32(9), *x)
}

func TestEvent_SchemaErrors(t *testing.T) {
	ev := fire.NewEvent()
	var se *fire.SchemaError

	require.ErrorAs(t, fire.Add(ev, "", 1), &se)
	require.ErrorAs(t, fire.Add(ev, "a/b", 1), &se)
	require.ErrorAs(t, fire.Add(ev, "p", plain{A: 1}), &se)
	require.ErrorAs(t, fire.Add(ev, "m", map[string]int{}), &se)

	require.ErrorAs(t, fire.Add(ev, "d", dupFields{}), &se)
	assert.Equal(t, "d/a", se.Path)

	require.ErrorAs(t, fire.Add(ev, "b", badField{}), &se)
	assert.Equal(t, "b/m", se.Path)

	require.ErrorAs(t, fire.Add(ev, "v", byValue{A: 1}), &se)
	assert.Equal(t, "v", se.Path)
	require.ErrorAs(t, fire.Add(ev, "h", holdsByValue{}), &se)
	assert.Equal(t, "h/inner", se.Path)
	require.ErrorAs(t, fire.Add(ev, "vv", fire.Vector[byValue]{}), &se)
	assert.Equal(t, "vv/data", se.Path)

	assert.Empty(t, ev.Names())
}

func TestEvent_Clear(t *testing.T) {
	ev := fire.NewEvent()
	require.NoError(t, fire.Add(ev, "x", int16(3)))
	x, err := fire.Get[int16](ev, "x")
	require.NoError(t, err)

	ev.Clear()
	assert.Empty(t, ev.Names())
	assert.Equal(t, int16(0), *x)

	// The name can be bound to a new type afterwards.
	require.NoError(t, fire.Add(ev, "x", "text"))
}

func TestEvent_GetStoredTypeMismatch(t *testing.T) {
	ctx := context.Background()
	ms := blobstore.NewMemoryStore()

	ev := fire.NewEvent()
	w, err := fire.Create(ctx, "t.fire", ev, fire.WithBlobStore(ms))
	require.NoError(t, err)
	require.NoError(t, fire.Add(ev, "x", int64(5)))
	_, err = w.Next()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ev = fire.NewEvent()
	r, err := fire.Open(ctx, "t.fire", ev, fire.WithBlobStore(ms))
	require.NoError(t, err)
	defer r.Close()

	// Before the first entry nothing can be loaded.
	_, err = fire.Get[int64](ev, "x")
	require.ErrorIs(t, err, fire.ErrMissingData)

	ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, err = fire.Get[float64](ev, "x")
	var tme *fire.TypeMismatchError
	require.ErrorAs(t, err, &tme)
	assert.Equal(t, "x", tme.Name)
	assert.Equal(t, "int64", tme.Bound)
	assert.Equal(t, "float64", tme.Requested)

	_, err = fire.Get[int32](ev, "absent")
	var nfe *fire.NotFoundError
	require.ErrorAs(t, err, &nfe)
	assert.Equal(t, int64(0), nfe.Entry)
	assert.Equal(t, "absent", nfe.Path)

	x, err := fire.Get[int64](ev, "x")
	require.NoError(t, err)
	assert.Equal(t, int64(5), *x)
}
