package main

import (
	"context"
	"errors"
	"os"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/fire/blobstore"
	"github.com/hupe1980/fire/blobstore/minio"
	"github.com/hupe1980/fire/blobstore/s3"
)

type options struct {
	file    string
	rows    int
	columns []string
	json    bool
	noColor bool

	s3Bucket   string
	s3Region   string
	s3Endpoint string

	minioEndpoint string
	minioBucket   string
	minioSecure   bool
}

// blobStore selects the backend FILE is read from. MinIO credentials come
// from MINIO_ACCESS_KEY and MINIO_SECRET_KEY.
func (o options) blobStore(ctx context.Context) (blobstore.BlobStore, error) {
	switch {
	case o.s3Bucket != "" && o.minioEndpoint != "":
		return nil, errors.New("--s3-bucket and --minio-endpoint are mutually exclusive")
	case o.s3Bucket != "":
		var opts []s3.Option
		if o.s3Region != "" {
			opts = append(opts, s3.WithRegion(o.s3Region))
		}
		if o.s3Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(o.s3Endpoint, true))
		}
		return s3.New(ctx, o.s3Bucket, opts...)
	case o.minioEndpoint != "":
		if o.minioBucket == "" {
			return nil, errors.New("--minio-bucket is required with --minio-endpoint")
		}
		client, err := miniogo.New(o.minioEndpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"), ""),
			Secure: o.minioSecure,
		})
		if err != nil {
			return nil, err
		}
		return minio.NewStore(client, o.minioBucket, ""), nil
	default:
		return blobstore.NewLocalStore(""), nil
	}
}
