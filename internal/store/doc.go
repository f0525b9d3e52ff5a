// Package store defines the object store contract the sync engine runs against.
//
// Concrete backends live in the awss3 and minio subpackages; tests use the
// in-memory implementation from internal/testutil.
package store
