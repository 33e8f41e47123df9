// Package fire saves and loads Go values entry by entry into a columnar
// file.
//
// Each value registered in an Event is laid out as columns, one per
// scalar field. An entry is one row across those columns. Files written
// this way can be read back one entry at a time or inspected column by
// column with the store package.
//
// # Quick Start
//
// Writing:
//
//	ev := fire.NewEvent()
//	f, _ := fire.Create(ctx, "events.fire", ev)
//	for i := range 10 {
//	    _ = fire.Add(ev, "energy", float64(i))
//	    _ = fire.Add(ev, "hits", fire.Vector[Hit]{{X: 1}, {X: 2}})
//	    _, _ = f.Next()
//	}
//	_ = f.Close() // nothing is visible before Close
//
// Reading:
//
//	ev := fire.NewEvent()
//	f, _ := fire.Open(ctx, "events.fire", ev)
//	defer f.Close()
//	for {
//	    ok, err := f.Next()
//	    if err != nil || !ok {
//	        break
//	    }
//	    energy, _ := fire.Get[float64](ev, "energy")
//	    fmt.Println(*energy)
//	}
//
// Pointers returned by Get stay valid and are refreshed by every Next.
//
// # Column Shapes
//
// The shape of a value follows from its static type:
//
//   - bool, the sized integers, int, uint, float32, float64 and string are
//     atomic: one column at the value's path.
//   - Slices of those, and Vector[E] of any supported E, are vectors:
//     path/begin and path/end hold each entry's element range and
//     path/data holds the elements.
//   - Types implementing Describer are composites: each attached field is
//     laid out at path/name. Composites have no column of their own.
//
// Shapes nest, so Vector[Cluster] where Cluster holds a Vector[Hit] is
// three levels deep.
//
// # Pipelines
//
// An Event can have one input File and one output File at the same time.
// Values obtained with Get come from the input and are reloaded on every
// Next of the reader; values added with Add are only written.
//
//	in, _ := fire.Open(ctx, "raw.fire", ev)
//	out, _ := fire.Create(ctx, "reco.fire", ev)
//	for ok, _ := in.Next(); ok; ok, _ = in.Next() {
//	    raw, _ := fire.Get[fire.Vector[Hit]](ev, "hits")
//	    _ = fire.Add(ev, "clusters", cluster(*raw))
//	    _, _ = out.Next()
//	}
//
// # Storage
//
// By default names are local file paths. WithBlobStore selects another
// backend, such as the S3 or MinIO stores in blobstore/s3 and
// blobstore/minio, and WithReadCache puts an LRU block cache in front of
// it.
//
// # Errors
//
// Failures are reported as *SchemaError, *TypeMismatchError,
// *NotFoundError or *IOError, or as one of the sentinel errors such as
// ErrModeViolation. Use errors.Is and errors.As to inspect them.
package fire
