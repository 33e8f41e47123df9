package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/store"
)

var (
	headerColor = color.New(color.Bold).SprintFunc()
	pathColor   = color.New(color.FgCyan).SprintFunc()
	typeColor   = color.New(color.FgYellow).SprintFunc()
	absentColor = color.New(color.Faint).SprintFunc()
)

type columnJSON struct {
	Path        string      `json:"path"`
	DType       store.DType `json:"dtype"`
	Rows        uint64      `json:"rows"`
	Present     uint64      `json:"present"`
	Chunks      int         `json:"chunks"`
	StoredBytes uint64      `json:"stored_bytes"`
	RawBytes    uint64      `json:"raw_bytes"`
}

type fileJSON struct {
	Name    string       `json:"name"`
	Entries uint64       `json:"entries"`
	Size    uint64       `json:"size"`
	Columns []columnJSON `json:"columns"`
}

func (o options) selected(path string) bool {
	if len(o.columns) == 0 {
		return true
	}
	for _, p := range o.columns {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func dump(ctx context.Context, out io.Writer, bs blobstore.BlobStore, o options) error {
	s, err := store.Open(ctx, bs, o.file)
	if err != nil {
		return err
	}
	defer s.Close()

	var cols []store.ColumnInfo
	for _, ci := range s.Columns() {
		if o.selected(ci.Path) {
			cols = append(cols, ci)
		}
	}

	if o.json {
		return dumpJSON(out, s, cols)
	}

	opts := s.Options()
	fmt.Fprintf(out, "%s %s\n", headerColor("file:"), s.Name())
	fmt.Fprintf(out, "%s %d  %s %s  %s %d  %s %s\n",
		headerColor("entries:"), s.Entries(),
		headerColor("size:"), humanize.IBytes(s.Size()),
		headerColor("rows/chunk:"), opts.RowsPerChunk,
		headerColor("codec:"), opts.Codec.Name(),
	)
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor("PATH\tTYPE\tROWS\tPRESENT\tCHUNKS\tSTORED\tRAW"))
	for _, ci := range cols {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			pathColor(ci.Path), typeColor(ci.DType), ci.Rows, ci.Present, ci.Chunks,
			humanize.IBytes(ci.StoredBytes), humanize.IBytes(ci.RawBytes))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if o.rows == 0 {
		return nil
	}
	for _, ci := range cols {
		fmt.Fprintf(out, "\n%s\n", pathColor(ci.Path))
		n := min(uint64(o.rows), ci.Rows) //nolint:gosec
		for row := range n {
			v, err := store.ReadAny(s, ci.Path, row)
			switch {
			case err == nil:
				fmt.Fprintf(out, "  %6d  %s\n", row, formatValue(v))
			case isNotFound(err):
				fmt.Fprintf(out, "  %6d  %s\n", row, absentColor("-"))
			default:
				return err
			}
		}
	}
	return nil
}

func formatValue(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(v)
}

func dumpJSON(out io.Writer, s *store.Store, cols []store.ColumnInfo) error {
	f := fileJSON{
		Name:    s.Name(),
		Entries: s.Entries(),
		Size:    s.Size(),
		Columns: make([]columnJSON, 0, len(cols)),
	}
	for _, ci := range cols {
		f.Columns = append(f.Columns, columnJSON(ci))
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(f)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
