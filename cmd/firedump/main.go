// Command firedump prints the layout and contents of fire files.
//
// Usage:
//
//	firedump [flags] FILE
//
// By default it lists every column with its type, row count and size.
// With --rows it also prints the first N rows of each column.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"
)

func main() {
	os.Exit(run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]))
}

func run(ctx context.Context, out, errOut io.Writer, args []string) int {
	opts, code := parseFlags(errOut, args)
	if code >= 0 {
		return code
	}

	color.NoColor = opts.noColor || !isTerminal(out)

	bs, err := opts.blobStore(ctx)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	if err := dump(ctx, out, bs, opts); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseFlags returns the options and -1, or an exit code when the
// program should stop.
func parseFlags(errOut io.Writer, args []string) (options, int) {
	var o options

	fs := flag.NewFlagSet("firedump", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintln(errOut, "Usage: firedump [flags] FILE")
		fs.PrintDefaults()
	}

	fs.IntVarP(&o.rows, "rows", "n", 0, "print the first N rows of each column")
	fs.StringSliceVarP(&o.columns, "column", "c", nil, "only show columns with this path prefix (repeatable)")
	fs.BoolVar(&o.json, "json", false, "print the column list as JSON")
	fs.BoolVar(&o.noColor, "no-color", false, "disable colored output")
	fs.StringVar(&o.s3Bucket, "s3-bucket", "", "read FILE from this S3 bucket")
	fs.StringVar(&o.s3Region, "s3-region", "", "S3 region")
	fs.StringVar(&o.s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint (path-style addressing)")
	fs.StringVar(&o.minioEndpoint, "minio-endpoint", "", "read FILE from this MinIO server")
	fs.StringVar(&o.minioBucket, "minio-bucket", "", "MinIO bucket")
	fs.BoolVar(&o.minioSecure, "minio-secure", false, "use TLS for MinIO")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return o, 0
		}
		return o, 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, 2
	}
	o.file = fs.Arg(0)
	if o.rows < 0 {
		fmt.Fprintln(errOut, "error: --rows must not be negative")
		return o, 2
	}
	return o, -1
}
