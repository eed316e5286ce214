// Package s3 implements blobstore.BlobStore on AWS S3.
//
// Reads use ranged GetObject requests so only the requested window of the
// sequence is ever materialized. Open performs a HeadObject to learn the
// object size; a missing key maps to blobstore.ErrNotFound.
package s3
