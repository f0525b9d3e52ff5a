// Package minio implements the object store contract with minio-go, for
// S3-compatible services that are not AWS.
package minio
