// Package minio implements blobstore.BlobStore for MinIO and other
// S3-compatible object stores using the MinIO Go client.
//
// Use this backend for self-hosted deployments; for AWS itself prefer the
// s3 package, which uses the official SDK and its credential chain.
package minio
